package services

import (
	"context"
	"log"
	"time"

	"galleria/internal/caching"
	"galleria/internal/common"
	"galleria/internal/models"
	"galleria/internal/repositories"
)

type ContentService interface {
	GetBySlug(ctx context.Context, slug string) (*models.ContentSection, error)
	Upsert(ctx context.Context, section *models.ContentSection) error
	List(ctx context.Context) ([]*models.ContentSection, error)
}

type contentService struct {
	contentRepo  repositories.ContentRepository
	storage      StorageService
	cacheService caching.CacheService
	urlExpiry    time.Duration
}

func NewContentService(contentRepo repositories.ContentRepository, storage StorageService, cacheService caching.CacheService, urlExpiry time.Duration) ContentService {
	return &contentService{
		contentRepo:  contentRepo,
		storage:      storage,
		cacheService: cacheService,
		urlExpiry:    urlExpiry,
	}
}

func (s *contentService) GetBySlug(ctx context.Context, slug string) (*models.ContentSection, error) {
	if err := common.ValidateContentSlug(slug); err != nil {
		return nil, common.InvalidInputf("%v", err)
	}

	if cached, err := s.cacheService.GetContent(ctx, slug); cached != nil {
		return cached, nil
	} else if err != nil {
		log.Printf("WARN: cache error for content %s: %v", slug, err)
	}

	section, err := s.contentRepo.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	s.attachImageURL(ctx, section)

	if cacheErr := s.cacheService.SetContent(ctx, section, 30*time.Minute); cacheErr != nil {
		log.Printf("WARN: failed to cache content %s: %v", slug, cacheErr)
	}

	return section, nil
}

func (s *contentService) Upsert(ctx context.Context, section *models.ContentSection) error {
	if err := common.ValidateContentSlug(section.Slug); err != nil {
		return common.InvalidInputf("%v", err)
	}
	if err := common.ValidateRequiredString(section.Title, "title"); err != nil {
		return common.InvalidInputf("%v", err)
	}

	if err := s.contentRepo.Upsert(ctx, section); err != nil {
		return err
	}

	if cacheErr := s.cacheService.DeleteContent(ctx, section.Slug); cacheErr != nil {
		log.Printf("WARN: failed to invalidate content cache %s: %v", section.Slug, cacheErr)
	}

	return nil
}

func (s *contentService) List(ctx context.Context) ([]*models.ContentSection, error) {
	sections, err := s.contentRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	for _, section := range sections {
		s.attachImageURL(ctx, section)
	}
	return sections, nil
}

func (s *contentService) attachImageURL(ctx context.Context, section *models.ContentSection) {
	if section.ImageKey == nil || *section.ImageKey == "" {
		return
	}
	url, err := s.storage.GetPresignedURL(ctx, imageBucket, *section.ImageKey, s.urlExpiry)
	if err != nil {
		log.Printf("WARN: could not presign %s: %v", *section.ImageKey, err)
		return
	}
	section.ImageURL = url
}

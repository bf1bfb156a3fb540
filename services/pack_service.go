package services

import (
	"context"
	"errors"
	"fmt"
	"io"

	"landlord_docs_app_go/models"

	"gorm.io/gorm"
)

var (
	ErrPackNotFound     = errors.New("pack not found")
	ErrDocumentNotFound = errors.New("document not found")
)

// GetPack loads a pack with its documents in reading order
func GetPack(db *gorm.DB, id string) (*models.DocumentPack, error) {
	var pack models.DocumentPack
	err := db.Preload("Documents", func(tx *gorm.DB) *gorm.DB {
		return tx.Order("position ASC")
	}).First(&pack, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPackNotFound
		}
		return nil, fmt.Errorf("failed to load pack: %w", err)
	}
	return &pack, nil
}

// ListPacks returns a case's packs, newest first
func ListPacks(db *gorm.DB, caseID string) ([]models.DocumentPack, error) {
	var packs []models.DocumentPack
	err := db.Preload("Documents", func(tx *gorm.DB) *gorm.DB {
		return tx.Order("position ASC")
	}).Where("case_id = ?", caseID).Order("created_at DESC").Find(&packs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list packs: %w", err)
	}
	return packs, nil
}

// GetDocument loads a rendered document. Failed documents have no file and count as missing.
func GetDocument(db *gorm.DB, id string) (*models.GeneratedDocument, error) {
	var doc models.GeneratedDocument
	if err := db.First(&doc, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDocumentNotFound
		}
		return nil, fmt.Errorf("failed to load document: %w", err)
	}
	if doc.Status != models.DocumentStatusRendered || doc.StorageKey == "" {
		return nil, ErrDocumentNotFound
	}
	// Documents of deleted cases are gone too
	if _, err := GetCase(db, doc.CaseID); err != nil {
		if errors.Is(err, ErrCaseNotFound) {
			return nil, ErrDocumentNotFound
		}
		return nil, err
	}
	return &doc, nil
}

// OpenDocument streams a stored document file
func OpenDocument(ctx context.Context, storage StorageProvider, doc *models.GeneratedDocument) (io.ReadCloser, string, error) {
	r, contentType, err := storage.Get(ctx, doc.StorageKey)
	if err != nil {
		if errors.Is(err, ErrObjectNotFound) {
			return nil, "", ErrDocumentNotFound
		}
		return nil, "", err
	}
	return r, contentType, nil
}

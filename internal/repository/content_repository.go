package repository

import (
	"errors"

	"lingotrail-backend/internal/db"
	"lingotrail-backend/internal/model"
)

// ContentRepository is the read surface over the content store: categories,
// vocabulary, and sentences. Content is seeded, never mutated at runtime.
type ContentRepository interface {
	GetCategories() ([]model.Category, error)
	GetCategory(id uint) (*model.Category, error)
	GetVocabulariesByIDs(ids []uint) ([]model.Vocabulary, error)
	GetSentencesByIDs(ids []uint) ([]model.Sentence, error)
	CreateCategory(category *model.Category) error
	CreateVocabulary(vocabulary *model.Vocabulary) error
	CreateSentence(sentence *model.Sentence) error
	CountCategories() (int64, error)
}

type contentRepository struct{}

func NewContentRepository() ContentRepository {
	return &contentRepository{}
}

func (r *contentRepository) GetCategories() ([]model.Category, error) {
	var categories []model.Category
	err := db.GetDB().Order("difficulty asc, name asc").Find(&categories).Error
	return categories, err
}

func (r *contentRepository) GetCategory(id uint) (*model.Category, error) {
	var category model.Category
	err := db.GetDB().Where("id = ?", id).First(&category).Error
	if err != nil {
		return nil, errors.New("category not found")
	}
	return &category, nil
}

func (r *contentRepository) GetVocabulariesByIDs(ids []uint) ([]model.Vocabulary, error) {
	var vocabularies []model.Vocabulary
	if len(ids) == 0 {
		return vocabularies, nil
	}
	err := db.GetDB().Where("id IN ?", ids).Find(&vocabularies).Error
	return vocabularies, err
}

func (r *contentRepository) GetSentencesByIDs(ids []uint) ([]model.Sentence, error) {
	var sentences []model.Sentence
	if len(ids) == 0 {
		return sentences, nil
	}
	err := db.GetDB().Where("id IN ?", ids).Find(&sentences).Error
	return sentences, err
}

func (r *contentRepository) CreateCategory(category *model.Category) error {
	return db.GetDB().Create(category).Error
}

func (r *contentRepository) CreateVocabulary(vocabulary *model.Vocabulary) error {
	return db.GetDB().Create(vocabulary).Error
}

func (r *contentRepository) CreateSentence(sentence *model.Sentence) error {
	return db.GetDB().Create(sentence).Error
}

func (r *contentRepository) CountCategories() (int64, error) {
	var count int64
	err := db.GetDB().Model(&model.Category{}).Count(&count).Error
	return count, err
}

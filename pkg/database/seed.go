package database

import (
	"context"
	"os"

	"coursehub_backend/internal/repository"
	"coursehub_backend/pkg/logger"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
)

// CategorySeed is the layout of configs/categories.yaml: category names grouped by area.
type CategorySeed struct {
	Groups []struct {
		Name       string   `yaml:"name"`
		Categories []string `yaml:"categories"`
	} `yaml:"groups"`
}

func LoadCategorySeed(path string) (*CategorySeed, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var seed CategorySeed
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return nil, err
	}
	return &seed, nil
}

func (s *CategorySeed) Names() []string {
	var names []string
	for _, g := range s.Groups {
		names = append(names, g.Categories...)
	}
	return names
}

// SeedCategories inserts the categories of the seed file that do not exist yet.
func SeedCategories(ctx context.Context, db *gorm.DB, path string) (int, error) {
	seed, err := LoadCategorySeed(path)
	if err != nil {
		return 0, err
	}

	created, err := repository.NewCategoryRepository(db).EnsureNames(ctx, seed.Names())
	if err != nil {
		return created, err
	}
	if created > 0 {
		logger.Log.Info("Categories seeded", zap.Int("created", created), zap.String("file", path))
	}
	return created, nil
}

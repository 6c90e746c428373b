package migration

import (
	"fmt"
	"log"

	"docqa-be/internal/model"

	"gorm.io/gorm"
)

// setupSQL runs before AutoMigrate; the vector column type needs the extension.
var setupSQL = []string{
	`CREATE EXTENSION IF NOT EXISTS vector;`,
}

// postMigrationSQL holds what AutoMigrate cannot express.
var postMigrationSQL = []string{
	`CREATE INDEX IF NOT EXISTS idx_document_chunks_embedding
	 ON document_chunks USING hnsw (embedding vector_cosine_ops);`,
}

// Models lists every table in dependency order.
func Models() []interface{} {
	return []interface{}{
		&model.File{},
		&model.DocumentChunk{},
		&model.Image{},
		&model.Question{},
		&model.Answer{},
	}
}

// Run creates the pgvector extension, migrates every model and builds the vector index.
func Run(db *gorm.DB) error {
	log.Println("Step 1: Setting up extensions...")
	for _, sql := range setupSQL {
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("setup sql: %w", err)
		}
	}

	log.Printf("Step 2: Running AutoMigrate for %d tables...", len(Models()))
	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("automigrate: %w", err)
	}

	log.Println("Step 3: Creating indexes...")
	for _, sql := range postMigrationSQL {
		if err := db.Exec(sql).Error; err != nil {
			log.Printf("Warn: Failed to execute post-migration SQL: %v", err)
		}
	}
	return nil
}

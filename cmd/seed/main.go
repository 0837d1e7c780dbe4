package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/ikkim/storefront-backend/config"
	"github.com/ikkim/storefront-backend/internal/app/repository"
	"github.com/ikkim/storefront-backend/internal/app/service"
	"github.com/ikkim/storefront-backend/internal/db"
	"github.com/ikkim/storefront-backend/pkg/logger"
)

func main() {
	// 명령줄 인자 확인
	if len(os.Args) < 2 {
		log.Fatal("Usage: go run cmd/seed/main.go <xlsx_file_path>")
	}

	filePath := os.Args[1]

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	logger.Initialize(logger.Config{
		Level:       cfg.Server.LogLevel,
		Format:      "console",
		EnableColor: true,
	})

	if err := db.Initialize(&cfg.Database); err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	defer db.Close()

	if err := db.Migrate(); err != nil {
		log.Fatal("Failed to run migrations:", err)
	}

	importer := service.NewCatalogImporter(repository.NewProductRepository(db.GetDB()))

	// XLSX 파일 읽기
	fmt.Printf("Reading XLSX file: %s\n", filePath)
	file, err := os.Open(filePath)
	if err != nil {
		log.Fatal("Failed to open XLSX:", err)
	}
	defer file.Close()

	products, report, err := importer.ReadXLSX(file)
	if err != nil {
		log.Fatal("Failed to read XLSX:", err)
	}

	fmt.Printf("Rows read: %d (skipped: %d)\n", report.TotalRows, report.Skipped)
	fmt.Printf("Products: %d, feature groups: %d, feature values: %d\n", report.Products, report.Groups, report.Values)

	if len(products) == 0 {
		fmt.Println("Nothing to import.")
		return
	}

	// 사용자 확인
	fmt.Print("Do you want to proceed with the import? (yes/no): ")
	var confirm string
	fmt.Scanln(&confirm)
	if confirm != "yes" && confirm != "y" {
		fmt.Println("Import cancelled.")
		return
	}

	if err := importer.Import(context.Background(), products); err != nil {
		log.Fatal("Failed to import catalog:", err)
	}

	fmt.Println("Import completed successfully!")
	fmt.Printf("Total products imported: %d\n", len(products))
}

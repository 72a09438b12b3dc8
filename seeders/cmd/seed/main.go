package main

import (
	"context"
	"flag"
	"log"

	"go.uber.org/zap"

	"service-route/migrations"
	"service-route/pkg/config"
	"service-route/pkg/database/postgresql"
	"service-route/seeders"
)

func main() {
	log.Println("======================================================")
	log.Println("       🌱 СИСТЕМА СИДЕРОВ (Наполнение БД)           ")
	log.Println("======================================================")

	runDictionaries := flag.Bool("dictionaries", false, "Наполнить справочники (типы оборудования, каталог, клиенты)")
	runUsers := flag.Bool("users", false, "Создать администратора, менеджера и инженеров")
	runAll := flag.Bool("all", false, "Запустить все сидеры")

	flag.Parse()

	if !*runDictionaries && !*runUsers && !*runAll {
		log.Println("❌ Не выбран ни один сидер для запуска.")
		log.Println("")
		log.Println("Доступные флаги:")
		flag.PrintDefaults()
		log.Println("")
		log.Println("Примеры использования:")
		log.Println("  go run ./seeders/cmd/seed -dictionaries")
		log.Println("  go run ./seeders/cmd/seed -all")
		log.Println("======================================================")
		return
	}

	cfg := config.New()
	logger := zap.NewExample()

	dbPool, err := postgresql.ConnectDB(context.Background(), cfg.Postgres.DSN, logger)
	if err != nil {
		log.Fatalf("❌ Не удалось подключиться к БД: %v", err)
	}
	defer dbPool.Close()

	if err := migrations.Up(dbPool, logger); err != nil {
		log.Fatalf("❌ Ошибка миграций: %v", err)
	}

	log.Println("======================================================")

	if *runAll || *runDictionaries {
		seeders.SeedDictionaries(dbPool)
		log.Println("======================================================")
	}

	if *runAll || *runUsers {
		seeders.SeedUsers(dbPool)
		log.Println("======================================================")
	}

	log.Println("✅ Все указанные операции сидирования успешно завершены.")
	log.Println("======================================================")
}

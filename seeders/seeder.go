package seeders

import (
	"context"
	"log"

	"github.com/jackc/pgx/v5/pgxpool"
)

// SeedDictionaries наполняет справочники: типы оборудования, каталог запчастей и услуг, клиентов.
func SeedDictionaries(db *pgxpool.Pool) {
	ctx := context.Background()
	log.Println("▶️  Запуск наполнения справочников...")

	if err := seedEquipmentTypes(ctx, db); err != nil {
		log.Fatalf("❌ Ошибка наполнения Типов оборудования: %v", err)
	}
	if err := seedCatalog(ctx, db); err != nil {
		log.Fatalf("❌ Ошибка наполнения Каталога: %v", err)
	}
	if err := seedCustomers(ctx, db); err != nil {
		log.Fatalf("❌ Ошибка наполнения Клиентов: %v", err)
	}
	log.Println("✅ Наполнение справочников завершено!")
}

// SeedUsers создаёт администратора, менеджера и инженеров.
func SeedUsers(db *pgxpool.Pool) {
	ctx := context.Background()
	log.Println("▶️  Запуск создания пользователей...")

	if err := seedUsers(ctx, db); err != nil {
		log.Fatalf("❌ Ошибка создания пользователей: %v", err)
	}
	log.Println("✅ Пользователи созданы!")
}

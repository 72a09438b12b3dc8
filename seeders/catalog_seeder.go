package seeders

import (
	"context"
	"log"

	"github.com/jackc/pgx/v5/pgxpool"
)

func seedCatalog(ctx context.Context, db *pgxpool.Pool) error {
	log.Println("  - Наполнение таблиц 'parts' и 'services'...")

	tx, err := db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	partQuery := `INSERT INTO parts (name, sku, price, quantity, nomenclature_id)
				  SELECT $1, $2, $3, $4, $5 WHERE NOT EXISTS (SELECT 1 FROM parts WHERE nomenclature_id = $5)`
	for _, p := range partsData {
		if _, err := tx.Exec(ctx, partQuery, p.Name, p.Sku, p.Price, p.Quantity, p.NomenclatureID); err != nil {
			return err
		}
	}

	serviceQuery := `INSERT INTO services (name, price, nomenclature_id)
					 SELECT $1, $2, $3 WHERE NOT EXISTS (SELECT 1 FROM services WHERE nomenclature_id = $3)`
	for _, s := range servicesData {
		if _, err := tx.Exec(ctx, serviceQuery, s.Name, s.Price, s.NomenclatureID); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

func seedCustomers(ctx context.Context, db *pgxpool.Pool) error {
	log.Println("  - Наполнение таблицы 'customers'...")

	query := `INSERT INTO customers (full_name, phone_number)
			  SELECT $1, $2 WHERE NOT EXISTS (SELECT 1 FROM customers WHERE phone_number = $2)`
	for _, c := range customersData {
		if _, err := db.Exec(ctx, query, c.FullName, c.Phone); err != nil {
			return err
		}
	}
	return nil
}

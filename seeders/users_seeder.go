package seeders

import (
	"context"
	"log"

	"github.com/jackc/pgx/v5/pgxpool"
)

func seedUsers(ctx context.Context, db *pgxpool.Pool) error {
	for _, u := range usersData {
		var exists bool
		if err := db.QueryRow(ctx, "SELECT EXISTS(SELECT 1 FROM users WHERE phone = $1)", u.Phone).Scan(&exists); err != nil {
			return err
		}
		if exists {
			log.Printf("    - Пользователь %s уже существует. Пропускаем.", u.FullName)
			continue
		}

		if _, err := db.Exec(ctx, "INSERT INTO users (full_name, phone, role) VALUES ($1, $2, $3)", u.FullName, u.Phone, u.Role); err != nil {
			return err
		}
		log.Printf("    - Создан пользователь %s (%s)", u.FullName, u.Role)
	}
	return nil
}

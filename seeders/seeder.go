package seeders

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"calibrify/internal/entities"
	"calibrify/internal/repositories"
	apperrors "calibrify/pkg/errors"
	"calibrify/pkg/utils"
)

// SeedAdmin создаёт сотрудника с is_staff. Существующий пользователь не изменяется.
func SeedAdmin(ctx context.Context, db *pgxpool.Pool, username, password string) error {
	log.Printf("▶️  Создание администратора %q...", username)
	if username == "" || len(password) < 8 {
		return errors.New("нужны --username и --password (не короче 8 символов)")
	}

	userRepo := repositories.NewUserRepository(db, zap.NewNop())
	if _, err := userRepo.FindByUsername(ctx, nil, username); err == nil {
		log.Println("    - Пользователь уже существует. Пропускаем.")
		return nil
	} else if !errors.Is(err, apperrors.ErrUserNotFound) {
		return fmt.Errorf("ошибка при проверке существования пользователя: %w", err)
	}

	hashedPassword, err := utils.HashPassword(password)
	if err != nil {
		return err
	}

	id, err := userRepo.Create(ctx, nil, entities.User{
		Username: username,
		Password: hashedPassword,
		IsStaff:  true,
		IsActive: true,
	})
	if err != nil {
		return err
	}
	log.Printf("✅ Администратор создан, id=%d", id)
	return nil
}

// SeedDemoEquipment добавляет демонстрационное оборудование, пропуская уже существующие серийные номера.
func SeedDemoEquipment(ctx context.Context, db *pgxpool.Pool, loc *time.Location) error {
	log.Println("▶️  Наполнение демонстрационного оборудования...")

	equipmentRepo := repositories.NewEquipmentRepository(db, zap.NewNop(), loc)
	created := 0
	for _, d := range demoEquipmentData {
		exists, err := equipmentRepo.ExistsBySerialNumber(ctx, nil, d.SerialNumber, 0)
		if err != nil {
			return err
		}
		if exists {
			continue
		}

		purchaseDate, err := utils.ParseDate(d.PurchaseDate)
		if err != nil {
			return fmt.Errorf("неверная дата покупки %s: %w", d.SerialNumber, err)
		}

		if _, err := equipmentRepo.Create(ctx, nil, entities.Equipment{
			Name:                     d.Name,
			SerialNumber:             d.SerialNumber,
			Category:                 d.Category,
			PurchaseDate:             purchaseDate,
			ModelNumber:              d.ModelNumber,
			Manufacturer:             d.Manufacturer,
			Location:                 d.Location,
			CalibrationIntervalType:  d.IntervalType,
			CalibrationIntervalValue: d.IntervalValue,
			IsActive:                 true,
		}); err != nil {
			return fmt.Errorf("не удалось создать %s: %w", d.SerialNumber, err)
		}
		created++
	}

	log.Printf("✅ Демонстрационное оборудование: добавлено %d из %d", created, len(demoEquipmentData))
	return nil
}

package utils

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	apperrors "calibrify/pkg/errors"
)

// PasswordCost - стоимость bcrypt. Тесты снижают её до bcrypt.MinCost.
var PasswordCost = bcrypt.DefaultCost

// HashPassword хеширует пароль. bcrypt учитывает не больше 72 байт, длиннее не принимаем.
func HashPassword(password string) (string, error) {
	if password == "" {
		return "", apperrors.NewFieldError("password", "Обязательное поле")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), PasswordCost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return "", apperrors.NewFieldError("password", "Пароль длиннее 72 байт")
	}
	if err != nil {
		return "", fmt.Errorf("не удалось хешировать пароль: %w", err)
	}
	return string(hash), nil
}

// CheckPassword возвращает ErrInvalidCredentials, если пароль не подходит к хешу.
func CheckPassword(hash, password string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return apperrors.ErrInvalidCredentials
	}
	return nil
}

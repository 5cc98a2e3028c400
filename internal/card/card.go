// Package card содержит проверку и генерацию номеров банковских карт.
package card

import (
	"math/rand"
	"strconv"
	"strings"
)

// Normalize убирает пробелы и дефисы из номера карты.
func Normalize(number string) string {
	number = strings.ReplaceAll(number, " ", "")
	return strings.ReplaceAll(number, "-", "")
}

// Valid проверяет номер карты: ровно 16 цифр и контрольная сумма по алгоритму Луна.
func Valid(number string) bool {
	number = Normalize(number)
	if len(number) != 16 {
		return false
	}
	for _, r := range number {
		if r < '0' || r > '9' {
			return false
		}
	}
	return luhnSum(number)%10 == 0
}

// luhnSum считает сумму Луна: справа налево удваивается каждая вторая цифра,
// из результата больше 9 вычитается 9.
func luhnSum(number string) int {
	sum := 0
	double := false
	for i := len(number) - 1; i >= 0; i-- {
		digit := int(number[i] - '0')
		if double {
			digit *= 2
			if digit > 9 {
				digit -= 9
			}
		}
		sum += digit
		double = !double
	}
	return sum
}

// Generate возвращает случайный корректный 16-значный номер карты с префиксом "4".
func Generate() string {
	prefix := "4"
	for i := 0; i < 14; i++ {
		prefix += strconv.Itoa(rand.Intn(10))
	}
	checkDigit := (10 - luhnSum(prefix+"0")%10) % 10
	return prefix + strconv.Itoa(checkDigit)
}

// Mask оставляет видимыми только последние четыре цифры номера.
func Mask(number string) string {
	number = Normalize(number)
	if len(number) < 4 {
		return "****"
	}
	return "**** **** **** " + number[len(number)-4:]
}

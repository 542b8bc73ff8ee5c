package validator

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

func FormatValidationError(err error) string {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		var messages []string
		for _, fieldError := range validationErrors {
			message := getFieldErrorMessage(fieldError)
			messages = append(messages, message)
		}
		return strings.Join(messages, "; ")
	}
	return err.Error()
}

func getFieldErrorMessage(fe validator.FieldError) string {
	field := getFieldName(fe.Field())

	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s wajib diisi", field)
	case "email":
		return fmt.Sprintf("%s harus berupa email yang valid", field)
	case "min":
		if fe.Type().String() == "string" {
			return fmt.Sprintf("%s minimal %s karakter", field, fe.Param())
		}
		return fmt.Sprintf("%s minimal %s", field, fe.Param())
	case "max":
		if fe.Type().String() == "string" {
			return fmt.Sprintf("%s maksimal %s karakter", field, fe.Param())
		}
		return fmt.Sprintf("%s maksimal %s", field, fe.Param())
	case "gt":
		return fmt.Sprintf("%s harus lebih dari %s", field, fe.Param())
	case "gte":
		return fmt.Sprintf("%s tidak boleh kurang dari %s", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s harus salah satu dari: %s", field, strings.ReplaceAll(fe.Param(), " ", ", "))
	case "uuid":
		return fmt.Sprintf("%s harus berupa UUID", field)
	default:
		return fmt.Sprintf("%s tidak valid", field)
	}
}

func getFieldName(field string) string {
	fieldNames := map[string]string{
		"Email":        "Email",
		"Password":     "Password",
		"Role":         "Role",
		"FullName":     "Nama lengkap",
		"ClassID":      "Kelas",
		"TeacherID":    "Wali kelas",
		"Name":         "Nama",
		"Price":        "Harga",
		"Stock":        "Stok",
		"ProductID":    "Produk",
		"UserID":       "Siswa",
		"Amount":       "Jumlah poin",
		"Reason":       "Alasan",
		"Title":        "Judul",
		"Body":         "Isi",
		"Status":       "Status",
		"ScheduledFor": "Jadwal tayang",
	}

	if name, ok := fieldNames[field]; ok {
		return name
	}
	return field
}

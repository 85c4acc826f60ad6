package domain

import (
	"errors"
	"fmt"
)

// Señales de dominio compartidas por todas las entidades. Los handlers
// nunca formatean códigos HTTP: adjuntan estas señales y el traductor
// del borde decide el status.
var (
	ErrNotFound     = errors.New("record not found")
	ErrInvalidInput = errors.New("invalid input")
)

// StorageError marca un fallo de la infraestructura de persistencia
// (conexión caída, timeout, SQL malformado) preservando la causa.
type StorageError struct {
	Cause error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage error: %v", e.Cause)
}

func (e *StorageError) Unwrap() error {
	return e.Cause
}

// Storage envuelve un error de infraestructura. Las señales de dominio
// y los errores ya clasificados pasan sin tocar.
func Storage(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrNotFound) || errors.Is(err, ErrInvalidInput) {
		return err
	}
	var storageErr *StorageError
	if errors.As(err, &storageErr) {
		return err
	}
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return err
	}
	return &StorageError{Cause: err}
}

// StatusError es un error ya clasificado con su código externo; el
// traductor del borde lo deja pasar tal cual sin re-clasificarlo.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("status %d: %s", e.Code, e.Message)
}

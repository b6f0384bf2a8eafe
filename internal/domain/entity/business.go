package entity

import "time"

// Business representa un negocio del usuario (alcance owner/business de facturas y pagos).
type Business struct {
	ID        string
	OwnerID   string
	Name      string
	RUC       string
	Address   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

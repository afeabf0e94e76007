// Package integration defines the ports to external collaborators the
// posting core calls out to. Implementations live in infrastructure.
package integration

import (
	"context"

	"github.com/google/uuid"
)

// EInvoiceStatus is the transmission state reported by the provider
type EInvoiceStatus string

const (
	EInvoiceStatusPending   EInvoiceStatus = "PENDING"
	EInvoiceStatusDelivered EInvoiceStatus = "DELIVERED"
	EInvoiceStatusRejected  EInvoiceStatus = "REJECTED"
	EInvoiceStatusUnknown   EInvoiceStatus = "UNKNOWN"
)

// EInvoiceAdapter transmits posted invoices to the e-invoice provider.
// Send is invoked only after a document reaches APPROVED/POSTED; the
// caller marks the document SENT out of band on success.
type EInvoiceAdapter interface {
	// Send transmits the document to the provider
	Send(ctx context.Context, documentID uuid.UUID) error

	// Status queries the provider for the transmission state
	Status(ctx context.Context, documentID uuid.UUID) (EInvoiceStatus, error)
}

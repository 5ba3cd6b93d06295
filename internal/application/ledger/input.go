package ledger

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/inventario-ledger/internal/application/dto"
	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/stock"
)

const maxTransactionNoLen = 50

// LineInput línea de transacción. ID vacío indica línea nueva.
type LineInput struct {
	ID       string
	ItemID   string
	Quantity int
	Price    decimal.Decimal
}

// CreateInput datos para registrar una transacción.
type CreateInput struct {
	TransactionNo string
	Date          time.Time
	Type          string
	Notes         string
	Lines         []LineInput
}

// UpdateInput cambios sobre una transacción. Los punteros nil no se modifican.
// Si ReplaceLines es true, Lines es el nuevo conjunto completo de líneas.
type UpdateInput struct {
	TransactionNo *string
	Date          *time.Time
	Type          *string
	Notes         *string
	ReplaceLines  bool
	Lines         []LineInput
}

// CreateInputFromRequest adapta el DTO HTTP al input del caso de uso.
func CreateInputFromRequest(req dto.CreateTransactionRequest) (CreateInput, error) {
	date, err := ParseDate(req.Date)
	if err != nil {
		return CreateInput{}, domain.NewValidationError("date", "la fecha no es válida (use YYYY-MM-DD)")
	}
	lines, err := linesFromRequest(req.Items)
	if err != nil {
		return CreateInput{}, err
	}
	return CreateInput{
		TransactionNo: strings.TrimSpace(req.TransactionNo),
		Date:          date,
		Type:          req.Type,
		Notes:         req.Notes,
		Lines:         lines,
	}, nil
}

// UpdateInputFromRequest adapta el DTO HTTP de actualización.
func UpdateInputFromRequest(req dto.UpdateTransactionRequest) (UpdateInput, error) {
	in := UpdateInput{
		Type:  req.Type,
		Notes: req.Notes,
	}
	if req.TransactionNo != nil {
		no := strings.TrimSpace(*req.TransactionNo)
		in.TransactionNo = &no
	}
	if req.Date != nil {
		date, err := ParseDate(*req.Date)
		if err != nil {
			return UpdateInput{}, domain.NewValidationError("date", "la fecha no es válida (use YYYY-MM-DD)")
		}
		in.Date = &date
	}
	if req.Items != nil {
		lines, err := linesFromRequest(req.Items)
		if err != nil {
			return UpdateInput{}, err
		}
		in.ReplaceLines = true
		in.Lines = lines
	}
	return in, nil
}

// linesFromRequest exige precio explícito en cada línea; un precio ausente no se toma como 0.
func linesFromRequest(items []dto.TransactionLineRequest) ([]LineInput, error) {
	verr := &domain.ValidationError{}
	lines := make([]LineInput, 0, len(items))
	for i, it := range items {
		l := LineInput{ID: it.ID, ItemID: it.ItemID, Quantity: it.Quantity}
		if it.Price == nil {
			verr.Add(fmt.Sprintf("items.%d.price", i), "el precio es obligatorio")
		} else {
			l.Price = *it.Price
		}
		lines = append(lines, l)
	}
	if !verr.Empty() {
		return nil, verr
	}
	return lines, nil
}

// ParseDate acepta YYYY-MM-DD o RFC3339.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}

func validateCreate(in CreateInput) error {
	verr := &domain.ValidationError{}
	if in.TransactionNo == "" {
		verr.Add("transaction_no", "el número de transacción es obligatorio")
	} else if len(in.TransactionNo) > maxTransactionNoLen {
		verr.Add("transaction_no", fmt.Sprintf("el número de transacción no puede superar %d caracteres", maxTransactionNoLen))
	}
	if in.Date.IsZero() {
		verr.Add("date", "la fecha es obligatoria")
	}
	if !entity.IsValidTransactionType(in.Type) {
		verr.Add("type", "el tipo debe ser in u out")
	}
	if len(in.Lines) == 0 {
		verr.Add("items", "debe incluir al menos una línea")
	}
	validateLines(verr, in.Lines)
	if verr.Empty() {
		return nil
	}
	return verr
}

func validateUpdate(in UpdateInput) error {
	verr := &domain.ValidationError{}
	if in.TransactionNo != nil {
		if *in.TransactionNo == "" {
			verr.Add("transaction_no", "el número de transacción es obligatorio")
		} else if len(*in.TransactionNo) > maxTransactionNoLen {
			verr.Add("transaction_no", fmt.Sprintf("el número de transacción no puede superar %d caracteres", maxTransactionNoLen))
		}
	}
	if in.Date != nil && in.Date.IsZero() {
		verr.Add("date", "la fecha es obligatoria")
	}
	if in.ReplaceLines {
		if len(in.Lines) == 0 {
			verr.Add("items", "debe incluir al menos una línea")
		}
		validateLines(verr, in.Lines)
	}
	if verr.Empty() {
		return nil
	}
	return verr
}

func validateLines(verr *domain.ValidationError, lines []LineInput) {
	for i, l := range lines {
		if l.ItemID == "" {
			verr.Add(fmt.Sprintf("items.%d.item_id", i), "el ítem es obligatorio")
		}
		if l.Quantity < 1 {
			verr.Add(fmt.Sprintf("items.%d.quantity", i), "la cantidad debe ser al menos 1")
		} else if l.Quantity > stock.Max {
			verr.Add(fmt.Sprintf("items.%d.quantity", i), fmt.Sprintf("la cantidad no puede superar %d", stock.Max))
		}
		if l.Price.IsNegative() {
			verr.Add(fmt.Sprintf("items.%d.price", i), "el precio no puede ser negativo")
		}
	}
}

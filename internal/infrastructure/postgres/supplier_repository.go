package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
	"github.com/jhoicas/inventario-ledger/pkg/fieldcrypt"
)

var _ repository.SupplierRepository = (*SupplierRepo)(nil)

// SupplierRepo proveedores sobre PostgreSQL. address, phone, email y contact_person se
// guardan cifrados con el codec y se devuelven en claro.
type SupplierRepo struct {
	q     Querier
	codec fieldcrypt.Codec
}

// NewSupplierRepository construye el adaptador. Pasar pool o tx (Querier).
func NewSupplierRepository(q Querier, codec fieldcrypt.Codec) *SupplierRepo {
	return &SupplierRepo{q: q, codec: codec}
}

const supplierColumns = `id, name, address, phone, email, contact_person, created_at, updated_at`

func (r *SupplierRepo) Create(ctx context.Context, s *entity.Supplier) error {
	enc, err := r.encrypt(s)
	if err != nil {
		return err
	}
	_, err = r.q.Exec(ctx,
		`INSERT INTO suppliers (`+supplierColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		s.ID, s.Name, enc[0], enc[1], enc[2], enc[3], s.CreatedAt, s.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert supplier: %w", err)
	}
	return nil
}

func (r *SupplierRepo) GetByID(ctx context.Context, id string) (*entity.Supplier, error) {
	if !validID(id) {
		return nil, nil
	}
	row := r.q.QueryRow(ctx, `SELECT `+supplierColumns+` FROM suppliers WHERE id = $1`, id)
	s, err := r.scan(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get supplier: %w", err)
	}
	return s, nil
}

func (r *SupplierRepo) Update(ctx context.Context, s *entity.Supplier) error {
	enc, err := r.encrypt(s)
	if err != nil {
		return err
	}
	_, err = r.q.Exec(ctx,
		`UPDATE suppliers SET name = $2, address = $3, phone = $4, email = $5, contact_person = $6, updated_at = $7
		 WHERE id = $1`,
		s.ID, s.Name, enc[0], enc[1], enc[2], enc[3], s.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update supplier: %w", err)
	}
	return nil
}

func (r *SupplierRepo) List(ctx context.Context, limit, offset int) ([]*entity.Supplier, error) {
	rows, err := r.q.Query(ctx,
		`SELECT `+supplierColumns+` FROM suppliers ORDER BY name LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list suppliers: %w", err)
	}
	defer rows.Close()

	var list []*entity.Supplier
	for rows.Next() {
		s, err := r.scan(rows)
		if err != nil {
			return nil, fmt.Errorf("scan supplier: %w", err)
		}
		list = append(list, s)
	}
	return list, rows.Err()
}

func (r *SupplierRepo) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM suppliers`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count suppliers: %w", err)
	}
	return n, nil
}

func (r *SupplierRepo) Delete(ctx context.Context, id string) error {
	_, err := r.q.Exec(ctx, `DELETE FROM suppliers WHERE id = $1`, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return &domain.HasDependentsError{Resource: "el proveedor", Dependent: "ítems"}
		}
		return fmt.Errorf("delete supplier: %w", err)
	}
	return nil
}

// encrypt devuelve address, phone, email y contact_person cifrados, en ese orden.
func (r *SupplierRepo) encrypt(s *entity.Supplier) ([4]string, error) {
	var out [4]string
	for i, v := range []string{s.Address, s.Phone, s.Email, s.ContactPerson} {
		enc, err := r.codec.Encrypt(v)
		if err != nil {
			return out, fmt.Errorf("cifrar proveedor: %w", err)
		}
		out[i] = enc
	}
	return out, nil
}

func (r *SupplierRepo) scan(row pgx.Row) (*entity.Supplier, error) {
	var s entity.Supplier
	if err := row.Scan(&s.ID, &s.Name, &s.Address, &s.Phone, &s.Email, &s.ContactPerson, &s.CreatedAt, &s.UpdatedAt); err != nil {
		return nil, err
	}
	for _, f := range []*string{&s.Address, &s.Phone, &s.Email, &s.ContactPerson} {
		plain, err := r.codec.Decrypt(*f)
		if err != nil {
			return nil, fmt.Errorf("descifrar proveedor %s: %w", s.ID, err)
		}
		*f = plain
	}
	return &s, nil
}

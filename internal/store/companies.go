// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
)

// CreateCompanyParams holds the writable company columns.
type CreateCompanyParams struct {
	CompanyName string
	SubCompany1 string
	SubCompany2 string
}

// CreateCompany inserts a new company and returns its assigned id. A
// duplicate company_name surfaces as a unique-constraint error; see
// IsUniqueConstraint.
func (q *Queries) CreateCompany(ctx context.Context, p CreateCompanyParams) (int64, error) {
	var id int64
	err := q.db.QueryRowContext(ctx,
		"INSERT INTO companies (company_name, sub_company1, sub_company2) VALUES (?, ?, ?) RETURNING id",
		p.CompanyName, p.SubCompany1, p.SubCompany2).Scan(&id)
	if err != nil {
		return 0, err
	}
	return id, nil
}

// GetCompany returns a company by id, or sql.ErrNoRows.
func (q *Queries) GetCompany(ctx context.Context, id int64) (Company, error) {
	var c Company
	err := q.db.QueryRowContext(ctx,
		"SELECT id, company_name, sub_company1, sub_company2 FROM companies WHERE id = ?", id).
		Scan(&c.ID, &c.CompanyName, &c.SubCompany1, &c.SubCompany2)
	return c, err
}

// ListCompanies returns all companies in store order.
func (q *Queries) ListCompanies(ctx context.Context) ([]Company, error) {
	rows, err := q.db.QueryContext(ctx,
		"SELECT id, company_name, sub_company1, sub_company2 FROM companies")
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	companies := []Company{}
	for rows.Next() {
		var c Company
		if err := rows.Scan(&c.ID, &c.CompanyName, &c.SubCompany1, &c.SubCompany2); err != nil {
			return nil, err
		}
		companies = append(companies, c)
	}
	return companies, rows.Err()
}

// UpdateCompany replaces the writable columns of an existing company.
// Returns sql.ErrNoRows when the id does not exist.
func (q *Queries) UpdateCompany(ctx context.Context, id int64, p CreateCompanyParams) error {
	res, err := q.db.ExecContext(ctx,
		"UPDATE companies SET company_name = ?, sub_company1 = ?, sub_company2 = ? WHERE id = ?",
		p.CompanyName, p.SubCompany1, p.SubCompany2, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// DeleteCompany removes a company by id. Returns sql.ErrNoRows when the id
// does not exist.
func (q *Queries) DeleteCompany(ctx context.Context, id int64) error {
	res, err := q.db.ExecContext(ctx, "DELETE FROM companies WHERE id = ?", id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// CompanyNameExists reports whether another company (excluding excludeID)
// already holds the given name. Pass excludeID 0 on create.
func (q *Queries) CompanyNameExists(ctx context.Context, name string, excludeID int64) (bool, error) {
	var id int64
	err := q.db.QueryRowContext(ctx,
		"SELECT id FROM companies WHERE company_name = ? AND id != ?", name, excludeID).Scan(&id)
	if err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

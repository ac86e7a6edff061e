// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// contactSelect is the canonical column list used by every contacts query.
const contactSelect = `id, full_name, main_company, job_title, mobile_phone,
	office_phone1, extension1, office_phone2, extension2, office_phone3, extension3,
	email, office_manager_name1, office_manager_mobile1, office_manager_name2,
	office_manager_mobile2, office_manager_name3, office_manager_mobile3,
	office_email, subject_category, country, address, postal_code, description`

// searchColumns is the fixed set of 13 text columns matched by a search term.
var searchColumns = []string{
	"full_name", "main_company", "job_title", "mobile_phone",
	"office_phone1", "office_phone2", "office_phone3",
	"email", "office_email", "subject_category",
	"country", "address", "description",
}

// sortColumns is the allow-list of columns a caller may sort by. Anything
// else falls back to unspecified store order instead of erroring, which keeps
// unchecked column names out of the ORDER BY clause.
var sortColumns = map[string]struct{}{
	"id": {}, "full_name": {}, "main_company": {}, "job_title": {},
	"mobile_phone": {}, "office_phone1": {}, "office_phone2": {},
	"office_phone3": {}, "email": {}, "office_email": {},
	"subject_category": {}, "country": {}, "address": {}, "description": {},
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanContact(row rowScanner) (Contact, error) {
	var c Contact
	err := row.Scan(
		&c.ID, &c.FullName, &c.MainCompany, &c.JobTitle, &c.MobilePhone,
		&c.OfficePhone1, &c.Extension1, &c.OfficePhone2, &c.Extension2,
		&c.OfficePhone3, &c.Extension3, &c.Email,
		&c.OfficeManagerName1, &c.OfficeManagerMobile1,
		&c.OfficeManagerName2, &c.OfficeManagerMobile2,
		&c.OfficeManagerName3, &c.OfficeManagerMobile3,
		&c.OfficeEmail, &c.SubjectCategory, &c.Country,
		&c.Address, &c.PostalCode, &c.Description,
	)
	return c, err
}

// CreateContactParams holds every writable contact column.
type CreateContactParams struct {
	FullName             string
	MainCompany          string
	JobTitle             string
	MobilePhone          string
	OfficePhone1         string
	Extension1           string
	OfficePhone2         string
	Extension2           string
	OfficePhone3         string
	Extension3           string
	Email                string
	OfficeManagerName1   string
	OfficeManagerMobile1 string
	OfficeManagerName2   string
	OfficeManagerMobile2 string
	OfficeManagerName3   string
	OfficeManagerMobile3 string
	OfficeEmail          string
	SubjectCategory      string
	Country              string
	Address              string
	PostalCode           string
	Description          string
}

func contactArgs(p CreateContactParams) []any {
	return []any{
		p.FullName, p.MainCompany, p.JobTitle, p.MobilePhone,
		p.OfficePhone1, p.Extension1, p.OfficePhone2, p.Extension2,
		p.OfficePhone3, p.Extension3, p.Email,
		p.OfficeManagerName1, p.OfficeManagerMobile1,
		p.OfficeManagerName2, p.OfficeManagerMobile2,
		p.OfficeManagerName3, p.OfficeManagerMobile3,
		p.OfficeEmail, p.SubjectCategory, p.Country,
		p.Address, p.PostalCode, p.Description,
	}
}

// CreateContact inserts a new contact and returns its assigned id.
func (q *Queries) CreateContact(ctx context.Context, p CreateContactParams) (int64, error) {
	const query = `INSERT INTO contacts (
		full_name, main_company, job_title, mobile_phone,
		office_phone1, extension1, office_phone2, extension2, office_phone3, extension3,
		email, office_manager_name1, office_manager_mobile1, office_manager_name2,
		office_manager_mobile2, office_manager_name3, office_manager_mobile3,
		office_email, subject_category, country, address, postal_code, description
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	RETURNING id`

	var id int64
	if err := q.db.QueryRowContext(ctx, query, contactArgs(p)...).Scan(&id); err != nil {
		return 0, err
	}
	return id, nil
}

// GetContact returns a contact by id, or sql.ErrNoRows.
func (q *Queries) GetContact(ctx context.Context, id int64) (Contact, error) {
	row := q.db.QueryRowContext(ctx, "SELECT "+contactSelect+" FROM contacts WHERE id = ?", id)
	return scanContact(row)
}

// ListContacts returns all contacts in store order.
func (q *Queries) ListContacts(ctx context.Context) ([]Contact, error) {
	rows, err := q.db.QueryContext(ctx, "SELECT "+contactSelect+" FROM contacts")
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	return collectContacts(rows)
}

// UpdateContact replaces every writable column of an existing contact.
// Returns sql.ErrNoRows when the id does not exist.
func (q *Queries) UpdateContact(ctx context.Context, id int64, p CreateContactParams) error {
	const query = `UPDATE contacts SET
		full_name = ?, main_company = ?, job_title = ?, mobile_phone = ?,
		office_phone1 = ?, extension1 = ?, office_phone2 = ?, extension2 = ?,
		office_phone3 = ?, extension3 = ?, email = ?,
		office_manager_name1 = ?, office_manager_mobile1 = ?,
		office_manager_name2 = ?, office_manager_mobile2 = ?,
		office_manager_name3 = ?, office_manager_mobile3 = ?,
		office_email = ?, subject_category = ?, country = ?,
		address = ?, postal_code = ?, description = ?
	WHERE id = ?`

	args := append(contactArgs(p), id)
	res, err := q.db.ExecContext(ctx, query, args...)
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

// DeleteContact removes a contact by id. Returns sql.ErrNoRows when the id
// does not exist, so deleting twice reports not-found the second time.
func (q *Queries) DeleteContact(ctx context.Context, id int64) error {
	res, err := q.db.ExecContext(ctx, "DELETE FROM contacts WHERE id = ?", id)
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

// CountContacts returns the total number of contacts.
func (q *Queries) CountContacts(ctx context.Context) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM contacts").Scan(&n)
	return n, err
}

// ListDistinctCompanies returns the distinct non-empty main_company values
// from the contacts table, sorted ascending.
func (q *Queries) ListDistinctCompanies(ctx context.Context) ([]string, error) {
	rows, err := q.db.QueryContext(ctx,
		"SELECT DISTINCT main_company FROM contacts WHERE main_company <> '' ORDER BY main_company")
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	names := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// SearchContactsParams controls filtering, ordering, and pagination of a
// contact search.
type SearchContactsParams struct {
	Term          string
	Offset        int64
	Limit         int64
	SortBy        string
	SortDirection string
	ExportAll     bool
}

// SearchContacts runs a filtered, sorted, optionally paginated query against
// the contacts table.
//
// A non-empty term is matched case-insensitively (SQLite LIKE) against the
// fixed searchColumns set, OR-combined; an empty term matches every row.
// With ExportAll the full result set is returned and the total equals the
// returned row count; otherwise Offset/Limit apply to the fetch and the
// total comes from a separate unpaginated COUNT.
func (q *Queries) SearchContacts(ctx context.Context, p SearchContactsParams) ([]Contact, int64, error) {
	var where string
	var args []any
	if p.Term != "" {
		conds := make([]string, len(searchColumns))
		pattern := "%" + p.Term + "%"
		for i, col := range searchColumns {
			conds[i] = col + " LIKE ?"
			args = append(args, pattern)
		}
		where = " WHERE (" + strings.Join(conds, " OR ") + ")"
	}

	var order string
	if _, ok := sortColumns[p.SortBy]; ok {
		dir := "ASC"
		if strings.EqualFold(p.SortDirection, "desc") {
			dir = "DESC"
		}
		order = fmt.Sprintf(" ORDER BY %s %s", p.SortBy, dir)
	}

	query := "SELECT " + contactSelect + " FROM contacts" + where + order
	queryArgs := args
	if !p.ExportAll {
		query += " LIMIT ? OFFSET ?"
		queryArgs = append(append([]any{}, args...), p.Limit, p.Offset)
	}

	rows, err := q.db.QueryContext(ctx, query, queryArgs...)
	if err != nil {
		return nil, 0, err
	}
	defer func() { _ = rows.Close() }()

	contacts, err := collectContacts(rows)
	if err != nil {
		return nil, 0, err
	}

	if p.ExportAll {
		return contacts, int64(len(contacts)), nil
	}

	var total int64
	if err := q.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM contacts"+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}
	return contacts, total, nil
}

func collectContacts(rows *sql.Rows) ([]Contact, error) {
	contacts := []Contact{}
	for rows.Next() {
		c, err := scanContact(rows)
		if err != nil {
			return nil, err
		}
		contacts = append(contacts, c)
	}
	return contacts, rows.Err()
}

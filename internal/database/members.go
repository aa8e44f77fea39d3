package database

import (
	"errors"
	"strings"
)

// --- Member Queries ---

func (s *Service) CreateMember(db DBorTx, email, alias, fullName, passwordHash string) (*Member, error) {
	var hash interface{} = passwordHash
	if passwordHash == "" {
		hash = nil
	}
	query := `INSERT INTO members (email, alias, full_name, password_hash) VALUES (?, ?, ?, ?);`
	res, err := db.Exec(query, email, alias, fullName, hash)
	if err != nil {
		return nil, err
	}
	id, _ := res.LastInsertId()
	return s.GetMemberByID(db, id)
}

func (s *Service) GetMemberByEmail(db DBorTx, email string) (*Member, error) {
	query := `SELECT id, email, alias, full_name, password_hash, created_at FROM members WHERE email = ?;`
	member := &Member{}
	err := db.QueryRow(query, email).Scan(
		&member.ID,
		&member.Email,
		&member.Alias,
		&member.FullName,
		&member.PasswordHash,
		&member.CreatedAt,
	)
	if err != nil {
		return nil, err // Returns sql.ErrNoRows if not found
	}
	return member, nil
}

func (s *Service) GetMemberByID(db DBorTx, id int64) (*Member, error) {
	query := `SELECT id, email, alias, full_name, password_hash, created_at FROM members WHERE id = ?;`
	member := &Member{}
	err := db.QueryRow(query, id).Scan(
		&member.ID,
		&member.Email,
		&member.Alias,
		&member.FullName,
		&member.PasswordHash,
		&member.CreatedAt,
	)
	return member, err
}

// UpdateMember updates a member's alias, full name and/or password hash.
// Empty arguments leave the corresponding column untouched.
func (s *Service) UpdateMember(db DBorTx, memberID int64, alias, fullName, passwordHash string) error {
	var queryBuilder strings.Builder
	queryBuilder.WriteString("UPDATE members SET ")

	var args []interface{}
	if alias != "" {
		queryBuilder.WriteString("alias = ? ")
		args = append(args, alias)
	}

	if fullName != "" {
		if len(args) > 0 {
			queryBuilder.WriteString(", ")
		}
		queryBuilder.WriteString("full_name = ? ")
		args = append(args, fullName)
	}

	if passwordHash != "" {
		if len(args) > 0 {
			queryBuilder.WriteString(", ")
		}
		queryBuilder.WriteString("password_hash = ? ")
		args = append(args, passwordHash)
	}

	if len(args) == 0 {
		return errors.New("nothing to update")
	}

	queryBuilder.WriteString("WHERE id = ?;")
	args = append(args, memberID)

	_, err := db.Exec(queryBuilder.String(), args...)
	return err
}

// IsAliasTaken checks case-insensitive alias uniqueness, excluding the
// given member so a member can re-save their own alias.
func (s *Service) IsAliasTaken(db DBorTx, alias string, excludeMemberID int64) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM members WHERE alias = ? COLLATE NOCASE AND id != ?);`
	var taken bool
	err := db.QueryRow(query, alias, excludeMemberID).Scan(&taken)
	return taken, err
}

// DisplayName resolves a member's presentation name the same way the
// club site does: full name, else alias, else email.
func (m *Member) DisplayName() string {
	if m.FullName.Valid && m.FullName.String != "" {
		return m.FullName.String
	}
	if m.Alias.Valid && m.Alias.String != "" {
		return m.Alias.String
	}
	return m.Email
}

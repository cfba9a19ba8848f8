// Package sqlitestore writes a dataset into a single SQLite file. Dimensions
// and variables are cataloged in their own tables; numeric and character
// variables are stored as one little-endian blob each and string variables
// one row per element.
package sqlitestore

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/carbocation/pfx"
	"github.com/carbocation/vcfcolumnar/buildinfo"
	"github.com/carbocation/vcfcolumnar/schema"
	"github.com/jmoiron/sqlx"

	_ "github.com/mattn/go-sqlite3"
)

const FormatName = "vcfcolumnar-sqlite"

const ddl = `
CREATE TABLE metadata (
	key TEXT PRIMARY KEY,
	value TEXT NOT NULL
);
CREATE TABLE dimensions (
	ordinal INTEGER NOT NULL,
	name TEXT PRIMARY KEY,
	size INTEGER NOT NULL,
	unlimited INTEGER NOT NULL
);
CREATE TABLE variables (
	ordinal INTEGER NOT NULL,
	name TEXT PRIMARY KEY,
	type TEXT NOT NULL,
	dims TEXT NOT NULL,
	length INTEGER NOT NULL,
	data BLOB
);
CREATE TABLE strings (
	variable TEXT NOT NULL,
	idx INTEGER NOT NULL,
	value TEXT NOT NULL,
	PRIMARY KEY (variable, idx)
);
`

// Backend creates a dataset at Path, which must not exist yet.
type Backend struct {
	Path string

	// Build is stored in the metadata table. Defaults to the running
	// binary's build description.
	Build string
}

// connect opens path with sqlx. URI filenames have to begin with "file:".
func connect(path string) (*sqlx.DB, error) {
	if !strings.HasPrefix(path, "file:") {
		path = "file:" + path
	}
	return sqlx.Connect("sqlite3", path)
}

func (b Backend) Create(dims []schema.Dimension, vars []schema.Variable) (schema.Handle, error) {
	if _, err := os.Stat(b.Path); err == nil {
		return nil, fmt.Errorf("output %s already exists", b.Path)
	}

	db, err := connect(b.Path)
	if err != nil {
		return nil, pfx.Err(err)
	}

	h, err := create(db, b, dims, vars)
	if err != nil {
		db.Close()
		return nil, err
	}
	return h, nil
}

func create(db *sqlx.DB, b Backend, dims []schema.Dimension, vars []schema.Variable) (*handle, error) {
	build := b.Build
	if build == "" {
		build = buildinfo.Read().String()
	}

	tx, err := db.Beginx()
	if err != nil {
		return nil, pfx.Err(err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(ddl); err != nil {
		return nil, pfx.Err(err)
	}
	for key, value := range map[string]string{"format": FormatName, "build": build} {
		if _, err := tx.Exec("INSERT INTO metadata (key, value) VALUES (?, ?)", key, value); err != nil {
			return nil, pfx.Err(err)
		}
	}
	for i, d := range dims {
		if _, err := tx.Exec("INSERT INTO dimensions (ordinal, name, size, unlimited) VALUES (?, ?, ?, ?)", i, d.Name, d.Size, d.Unlimited); err != nil {
			return nil, pfx.Err(err)
		}
	}

	h := &handle{db: db, vars: make(map[string]entry, len(vars))}
	for i, v := range vars {
		if _, exists := h.vars[v.Name]; exists {
			return nil, fmt.Errorf("%w: %s", schema.ErrDuplicateVariable, v.Name)
		}
		if _, err := v.Type.NewBuffer(0); err != nil {
			return nil, fmt.Errorf("%s: %w", v.Name, err)
		}
		n, err := schema.Length(dims, v)
		if err != nil {
			return nil, err
		}
		if _, err := tx.Exec("INSERT INTO variables (ordinal, name, type, dims, length) VALUES (?, ?, ?, ?, ?)",
			i, v.Name, v.Type.String(), strings.Join(v.Dims, ","), n); err != nil {
			return nil, pfx.Err(err)
		}
		h.vars[v.Name] = entry{Type: v.Type, Length: n}
	}

	return h, pfx.Err(tx.Commit())
}

type entry struct {
	Type   schema.Type
	Length int
}

type handle struct {
	db   *sqlx.DB
	vars map[string]entry
}

func (h *handle) lookup(name string) (entry, error) {
	e, exists := h.vars[name]
	if !exists {
		return e, fmt.Errorf("unknown variable %s", name)
	}
	return e, nil
}

func (h *handle) WriteFull(name string, data interface{}) error {
	e, err := h.lookup(name)
	if err != nil {
		return err
	}
	if err := schema.CheckBuffer(e.Type, e.Length, data); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}

	if e.Type == schema.String {
		return h.WriteStrings(name, 0, data.([]string))
	}

	blob, err := encode(data)
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	if _, err := h.db.Exec("UPDATE variables SET data = ? WHERE name = ?", blob, name); err != nil {
		return fmt.Errorf("writing %s: %w", name, err)
	}
	return nil
}

func (h *handle) WriteStrings(name string, start int, values []string) error {
	e, err := h.lookup(name)
	if err != nil {
		return err
	}
	if e.Type != schema.String {
		return fmt.Errorf("%w: %s is %v, not string", schema.ErrBufferMismatch, name, e.Type)
	}
	if start < 0 || start+len(values) > e.Length {
		return fmt.Errorf("%w: range [%d,%d) outside %s of length %d", schema.ErrBufferMismatch, start, start+len(values), name, e.Length)
	}

	tx, err := h.db.Beginx()
	if err != nil {
		return pfx.Err(err)
	}
	defer tx.Rollback()

	stmt, err := tx.Preparex("INSERT OR REPLACE INTO strings (variable, idx, value) VALUES (?, ?, ?)")
	if err != nil {
		return pfx.Err(err)
	}
	defer stmt.Close()

	for i, v := range values {
		if _, err := stmt.Exec(name, start+i, v); err != nil {
			return fmt.Errorf("writing %s[%d]: %w", name, start+i, err)
		}
	}

	return pfx.Err(tx.Commit())
}

func (h *handle) Close() error {
	return pfx.Err(h.db.Close())
}

// Dataset reads back a file written by Backend.
type Dataset struct {
	db *sqlx.DB
}

type Variable struct {
	Name   string `db:"name"`
	Type   string `db:"type"`
	Dims   string `db:"dims"`
	Length int    `db:"length"`
}

type Dimension struct {
	Name      string `db:"name"`
	Size      int    `db:"size"`
	Unlimited bool   `db:"unlimited"`
}

func Open(path string) (*Dataset, error) {
	db, err := connect(path)
	if err != nil {
		return nil, pfx.Err(err)
	}

	var format string
	if err := db.Get(&format, "SELECT value FROM metadata WHERE key = 'format'"); err != nil {
		db.Close()
		return nil, fmt.Errorf("%s is not a dataset: %w", path, err)
	}
	if format != FormatName {
		db.Close()
		return nil, fmt.Errorf("%s holds format %q, expected %q", path, format, FormatName)
	}

	return &Dataset{db: db}, nil
}

func (d *Dataset) Close() error {
	return d.db.Close()
}

func (d *Dataset) Build() (string, error) {
	var build string
	err := d.db.Get(&build, "SELECT value FROM metadata WHERE key = 'build'")
	return build, pfx.Err(err)
}

// Dimensions returns the dimensions in creation order.
func (d *Dataset) Dimensions() ([]Dimension, error) {
	out := make([]Dimension, 0)
	err := d.db.Select(&out, "SELECT name, size, unlimited FROM dimensions ORDER BY ordinal")
	return out, pfx.Err(err)
}

func (d *Dataset) Variable(name string) (Variable, error) {
	var v Variable
	err := d.db.Get(&v, "SELECT name, type, dims, length FROM variables WHERE name = ?", name)
	if errors.Is(err, sql.ErrNoRows) {
		return v, fmt.Errorf("unknown variable %s", name)
	}
	return v, pfx.Err(err)
}

// Read returns the contents of a variable as its buffer type. Variables that
// were never written read as zeroes.
func (d *Dataset) Read(name string) (interface{}, error) {
	v, err := d.Variable(name)
	if err != nil {
		return nil, err
	}
	t, err := schema.ParseType(v.Type)
	if err != nil {
		return nil, err
	}

	if t == schema.String {
		rows := make([]struct {
			Idx   int    `db:"idx"`
			Value string `db:"value"`
		}, 0)
		if err := d.db.Select(&rows, "SELECT idx, value FROM strings WHERE variable = ? ORDER BY idx", name); err != nil {
			return nil, pfx.Err(err)
		}
		out := make([]string, v.Length)
		for _, r := range rows {
			if r.Idx >= 0 && r.Idx < len(out) {
				out[r.Idx] = r.Value
			}
		}
		return out, nil
	}

	var blob []byte
	if err := d.db.Get(&blob, "SELECT data FROM variables WHERE name = ?", name); err != nil {
		return nil, pfx.Err(err)
	}
	if blob == nil {
		return t.NewBuffer(v.Length)
	}
	return decode(t, v.Length, blob)
}

// Values reads a variable as a typed slice.
func Values[T any](d *Dataset, name string) ([]T, error) {
	raw, err := d.Read(name)
	if err != nil {
		return nil, err
	}
	out, ok := raw.([]T)
	if !ok {
		return nil, fmt.Errorf("%w: %s holds %T", schema.ErrBufferMismatch, name, raw)
	}
	return out, nil
}

package repository

import "errors"

// ErrNotFound is the repository-level sentinel returned when a query for a
// single entity finds no rows. The service layer translates it into the
// domain-level not-found error, keeping business logic decoupled from
// sql.ErrNoRows and the driver.
var ErrNotFound = errors.New("repository: not found")

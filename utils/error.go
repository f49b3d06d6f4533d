package utils

import "errors"

var ErrorRecordNotFound = errors.New("record not found")

var ErrorSessionNotFound = errors.New("session not found")

var ErrorOrderNotFound = errors.New("order not found")

// ErrorNoValidSheets is returned when every sheet in a reservation workbook
// failed normalization.
var ErrorNoValidSheets = errors.New("no valid reservation sheets found")

// ErrorMissingColumns is a validation failure: an input sheet lacks a
// required column. Wrapped with the missing column names.
var ErrorMissingColumns = errors.New("missing required columns")

var ErrorAlreadyMatched = errors.New("record is already matched")

package core

// error_messages.go maps errors to operator-facing messages with support codes.
//
// Classified errors map by kind first. A validated or I/O error only matches
// the text patterns of its own kind, so a quoted file name cannot change its
// code. Unknown and unclassified errors match any pattern, then ERR000.
//
//	VAL001 - Missing input: a required value was not provided
//	VAL002 - Missing column: the spreadsheet lacks a required column
//	RPT001 - No records: the file name matched no stored records
//	IO001  - File error: the report could not be written or serialized
//	IO002  - Unreadable workbook: the upload is not a valid spreadsheet
//	DB004  - Connection refused: the database is unreachable
//	DB006  - Timeout: the database did not answer in time
//	ERR000 - Unknown

import (
	"fmt"
	"strings"
)

// UserMessage is an error rendered for an operator.
type UserMessage struct {
	Message string // What happened
	Action  string // What to do about it
	Code    string // Support reference
}

type errorPattern struct {
	kind    error // ErrUnknown patterns apply to unclassified errors only
	pattern string
	msg     UserMessage
}

var (
	msgValidation = UserMessage{
		Message: "A required value is missing",
		Action:  "Fill in the highlighted field and try again",
		Code:    "VAL001",
	}
	msgNotFound = UserMessage{
		Message: "No records were found for that file name",
		Action:  "Check the file name matches an uploaded spreadsheet exactly",
		Code:    "RPT001",
	}
	msgIO = UserMessage{
		Message: "The report file could not be written",
		Action:  "Check the output folder exists and is writable",
		Code:    "IO001",
	}
	defaultMessage = UserMessage{
		Message: "An unexpected error occurred",
		Action:  "Please try again",
		Code:    "ERR000",
	}
)

// errorPatterns are checked in order against the lowercased error text.
var errorPatterns = []errorPattern{
	{
		kind:    ErrValidation,
		pattern: "missing required column",
		msg: UserMessage{
			Message: "Required column is missing from the spreadsheet",
			Action:  "Check that the header row contains CASE_ID",
			Code:    "VAL002",
		},
	},
	{
		kind:    ErrValidation,
		pattern: "file too large",
		msg: UserMessage{
			Message: "The file is larger than the upload limit",
			Action:  "Split the spreadsheet or raise UPLOAD_MAX_FILE_SIZE",
			Code:    "VAL003",
		},
	},
	{
		kind:    ErrIO,
		pattern: "unsupported workbook",
		msg: UserMessage{
			Message: "The file is not a readable Excel workbook",
			Action:  "Save the file as .xlsx and upload it again",
			Code:    "IO002",
		},
	},
	{
		kind:    ErrUnknown,
		pattern: "connection refused",
		msg: UserMessage{
			Message: "Unable to connect to database",
			Action:  "Please try again in a few moments",
			Code:    "DB004",
		},
	},
	{
		kind:    ErrUnknown,
		pattern: "timeout",
		msg: UserMessage{
			Message: "Operation timed out",
			Action:  "Please try again later",
			Code:    "DB006",
		},
	},
	{
		kind:    ErrUnknown,
		pattern: "context deadline exceeded",
		msg: UserMessage{
			Message: "Operation timed out",
			Action:  "Please try again later",
			Code:    "DB006",
		},
	},
}

// MapError converts err into a UserMessage.
// Returns the zero UserMessage for a nil error.
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	kind := KindOf(err)
	text := strings.ToLower(err.Error())
	for _, ep := range errorPatterns {
		if kind != ErrUnknown && ep.kind != kind {
			continue
		}
		if strings.Contains(text, ep.pattern) {
			return ep.msg
		}
	}

	switch kind {
	case ErrValidation:
		return msgValidation
	case ErrNotFound:
		return msgNotFound
	case ErrIO:
		return msgIO
	}

	return defaultMessage
}

// FormatUserError renders err as "Message (Code: XXX). Action".
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

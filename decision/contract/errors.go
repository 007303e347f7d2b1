package contract

import "errors"

var (
	// ErrOracleUnavailable marks transport or auth failures reaching the
	// reasoning service: the oracle could not be asked.
	ErrOracleUnavailable = errors.New("oracle unavailable")
	// ErrOracleDecode marks a reachable oracle that answered garbage:
	// malformed JSON or a required schema field missing from the result.
	ErrOracleDecode = errors.New("oracle response decode failed")
	// ErrRepository marks a data-access failure.
	ErrRepository = errors.New("repository query failed")
	// ErrMarketLookup marks a search transport failure. Recoverable: the
	// markdown pipeline degrades to an empty competitor-price list.
	ErrMarketLookup = errors.New("market lookup failed")
	// ErrNotification marks an email delivery failure.
	ErrNotification = errors.New("notification send failed")
)

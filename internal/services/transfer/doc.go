// Package transfer implements the funds-transfer engine: request
// validation, balance checking, currency reconciliation and the atomic
// ledger update that moves money between two accounts.
//
// Concurrent transfers that share an account serialize on exclusive row
// locks taken in ascending account-id order, so two transfers between the
// same pair of accounts can never deadlock regardless of direction.
package transfer

// Package models defines the core domain models for Splitledger.
//
// # Entities
//
//   - User: a registered account
//   - Group: a set of members sharing expenses in one currency
//   - Expense: a payment made by one member on behalf of several
//   - ExpenseParticipant: one member's exact share of an expense
//   - Settlement: a transfer intended to reduce debts between members
//
// # Design Principles
//
//  1. All monetary values are integer minor units (money.Cents). Floats
//     appear nowhere in this package.
//  2. An Expense always satisfies sum(participant shares) == amount. The
//     split calculator is the only code that produces participant shares.
//  3. Balances are derived, never stored: they are recomputed from the
//     expense and confirmed-settlement history on demand.
//  4. Relationships use ID strings instead of pointers to avoid circular
//     references.
package models

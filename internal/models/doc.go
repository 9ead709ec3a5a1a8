// Package models defines the core domain models for myfestival.
//
// # Models
//
//   - Member: a person who can join festivals, optionally paired with a partner
//   - Festival: an event with participants, shared invoices and, once closed,
//     the transfers that settle it
//   - Participant: a member as seen by the settlement engine of one festival
//   - Invoice: an amount paid by one creditor and shared by a set of sharers
//   - Transfer: a payment from a payer to a recipient produced by closing a festival
//
// # Design Principles
//
// 1. **Explicit aggregates**: a Festival is loaded with its participants and
// invoices before any calculation runs; nothing is fetched lazily.
// 2. **Exact money**: amounts are decimal.Decimal values rounded to the cent,
// never float64.
// 3. **Avoid circular references**: relationships use ID strings, not pointers.
package models

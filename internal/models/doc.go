// Package models defines the core domain models for Wattcount.
//
// # Entities
//
// Six record kinds are persisted, one collection each:
//   - User: a primary account owning a billing group, or a member that joined one
//   - GroupCode: 8-character invitation code binding a member to a primary's group
//   - ConsumptionRecord: a meter reading and the consumption derived from it
//   - Bill: an amount owed for a billing cycle, optionally tied to a reading
//   - Payment: an append-only payment against a bill
//   - Rate: a tariff price per kWh with an effective date window
//
// # Read Shapes
//
// ConsumptionView and BillView are the enriched shapes returned by list queries.
// They embed the stored record and add joined fields (username, full name,
// readings, payment totals). Field names in JSON follow the stored records.
//
// # Design Principles
//
//  1. Relationships are identifier strings, never pointers
//  2. Money and energy figures are decimal.Decimal, never float64
//  3. A bill's status is derived from its payments, the stored value is informational
//  4. Role-specific behaviour goes through User.Membership, not string comparisons
package models

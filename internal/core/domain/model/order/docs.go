// Package order contains the Order aggregate as consumed by the tracking core.
//
// An Order is created once at placement (NewOrder) or rebuilt from storage
// (RestoreOrder) and never mutated afterwards. It carries the owning user, the
// placement time that anchors the delivery simulation, the delivery address and
// coordinate, and its pizza line items priced with shopspring/decimal.
//
// Orders restored from storage may lack a delivery coordinate; such orders are
// rejected with ErrDeliveryLocationMissing when their status is computed.
package order

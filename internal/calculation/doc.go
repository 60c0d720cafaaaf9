// Package calculation counts the scenarios a configuration generates.
//
// The count is a product over entries: every entry with an active group
// multiplies the total by the number of enabled levels of that group, and
// entries without one leave it unchanged. Totals are decimals so very wide
// configurations never overflow.
package calculation

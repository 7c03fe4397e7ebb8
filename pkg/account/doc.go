// Package account binds an authenticated device account to a cache store.
//
// The account writes its globals (timezone, token, logged-in user, device,
// the [left, right] user ids) at the top of the store and exposes one
// scoped view per side of the device, keyed by that side's user id.
package account

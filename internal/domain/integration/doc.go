// Package integration contains the Integration bounded context.
// This context manages the connection to the Shopee marketplace.
//
// Key concepts:
//   - Marketplace: Port interface for listing live orders, fetching detail payloads and refreshing auth
//   - TokenStore: Port for persisting the marketplace access/refresh token pair
//   - ProductInfo: Value object for live stock and variation data of one listing
//
// Design Pattern: Ports & Adapters
//   - Ports (interfaces) are defined here in the domain layer
//   - Adapters (implementations) are in the infrastructure layer
package integration

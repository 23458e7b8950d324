// Package ebay implements the TaxonomySource port against the eBay
// commerce/taxonomy REST API.
//
// The client resolves the marketplace's default category tree id once,
// downloads the full tree in a single call, and flattens it into domain
// categories with root-to-leaf paths. Aspect schemas are fetched per
// category; a 204 response means the category has no specific
// requirements and maps to an empty schema, not an error.
//
// All requests go through a dual-strategy rate limiter: a proactive
// token bucket plus reactive throttling driven by response headers.
// Authentication uses an eBay application token obtained via the OAuth2
// client-credentials grant and refreshed automatically.
package ebay

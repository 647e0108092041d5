/*
Package catalog turns raw question rows into a domain.Catalog and keeps loaded catalogs warm.

Rows coming from spreadsheets, workflow tools or SQL exports rarely agree on types or key
style, so Decode accepts numbers as strings or floats and either camelCase or snake_case
keys. Validate is a lint for catalog authors: scoring never depends on it. Cache wraps
any ports.CatalogSource with a TTL cache and collapses concurrent loads of one tenant.
*/
package catalog

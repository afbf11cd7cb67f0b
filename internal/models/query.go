package models

// CanonicalQuery is the normalizer's immutable view of a raw lookup query.
type CanonicalQuery struct {
	Raw  string
	Type ComponentType
	// Text is the lower-cased, de-noised query used for provider searches and as the cache key.
	Text string
	// Brand is the board partner for GPUs, the vendor for CPUs and the maker for everything else.
	Brand string
	// Series is the product family, e.g. "GeForce", "Radeon", "Core", "Xeon", "Ryzen".
	Series string
	// Variant holds the marketing suffix stripped from GPU queries, e.g. "SC Ultra Gaming".
	Variant string
	// Tokens are the reference tokens of Text.
	Tokens []string
	// IdentityTokens must all be present in a candidate for it to match.
	IdentityTokens []string
}

// Vendor returns the chip vendor implied by the query family, if any.
func (q CanonicalQuery) Vendor() string {
	switch q.Type {
	case CPU:
		return q.Brand
	case GPU:
		return VendorForSeries(q.Series)
	}
	return ""
}

// VendorForSeries maps a CPU/GPU product family onto its chip vendor.
func VendorForSeries(series string) string {
	switch series {
	case "GeForce", "Quadro", "Titan":
		return "NVIDIA"
	case "Radeon", "Ryzen", "EPYC", "Threadripper", "Athlon":
		return "AMD"
	case "Arc", "Core", "Xeon", "Pentium", "Celeron":
		return "Intel"
	}
	return ""
}

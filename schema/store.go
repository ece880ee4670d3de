package schema

var (
	// bucket
	TipSpendBucket  = "tip-spend-bucket" // key: tip coin id, val: json spend of the tip's parent
	ResultBucket    = "result-bucket"    // key: domain name, val: json resolution result
	ConstantsBucket = "constants-bucket" // key: const name, val: bytes
)

// Buckets lists every bucket a KeyValueDB backend must create.
var Buckets = []string{TipSpendBucket, ResultBucket, ConstantsBucket}

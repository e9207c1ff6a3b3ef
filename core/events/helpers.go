package events

import (
	"strconv"

	"github.com/gagliardetto/solana-go"
)

func u64(v uint64) string { return strconv.FormatUint(v, 10) }

func i64(v int64) string { return strconv.FormatInt(v, 10) }

func addr(key solana.PublicKey) string {
	if key.IsZero() {
		return ""
	}
	return key.String()
}

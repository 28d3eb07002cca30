package images

import (
	"crypto/md5"
	"encoding/binary"
	"fmt"

	"github.com/nvr-ai/go-mrf/grid"
)

// ComputeChecksum generates a deterministic checksum over a grid's shape and
// samples, used to compare runs that must be bit-identical.
//
// Example:
//
// ```go
//
//	checksum := ComputeChecksum(res.Final)
//	fmt.Printf("output checksum: %s\n", checksum)
//
// ```
func ComputeChecksum(g *grid.Grid) string {
	if g == nil {
		return "empty"
	}

	hash := md5.New()
	buf := make([]byte, 4)
	for _, d := range g.Shape() {
		binary.LittleEndian.PutUint32(buf, uint32(d))
		hash.Write(buf)
	}
	for _, v := range g.Pix() {
		binary.LittleEndian.PutUint32(buf, uint32(v))
		hash.Write(buf)
	}
	return fmt.Sprintf("%x", hash.Sum(nil))
}

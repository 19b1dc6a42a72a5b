package cursor

import "fmt"

// HueForSID hashes a connection id onto a hue in [0, 360). The hash is a
// bytewise multiply-by-31 roll with uint32 wraparound, so a peer keeps the
// same hue for its whole session without any server round trip. Collisions
// between peers are tolerated.
func HueForSID(sid string) int {
	var h uint32
	for _, b := range []byte(sid) {
		h = h*31 + uint32(b)
	}
	return int(h % 360)
}

// ColorForSID renders the peer's hue as a fixed-saturation pastel color.
func ColorForSID(sid string) string {
	return fmt.Sprintf("hsl(%d 70%% 55%%)", HueForSID(sid))
}

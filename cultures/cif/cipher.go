package cif

// Keystream state every table starts from. There is no per-file key.
const (
	keyC byte = 71
	keyD byte = 126
)

// Decipher reverses the table cipher in place and returns data.
func Decipher(data []byte) []byte {
	var b byte
	c, d := keyC, keyD
	for i, x := range data {
		b = x - 1
		b ^= c
		c += d
		d += 33
		data[i] = b
	}
	return data
}

// Encipher applies the table cipher in place and returns data.
func Encipher(data []byte) []byte {
	c, d := keyC, keyD
	for i, b := range data {
		data[i] = (b ^ c) + 1
		c += d
		d += 33
	}
	return data
}

package crypto

const (
	// PEMHeader opens an SPKI public key in PEM form.
	PEMHeader = "-----BEGIN PUBLIC KEY-----"
	// PEMFooter closes an SPKI public key in PEM form.
	PEMFooter = "-----END PUBLIC KEY-----"

	// DefaultNonceLength is the nonce length used for request signatures.
	DefaultNonceLength = 16

	// NonceAlphabet is the character set random strings are drawn from.
	NonceAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

	// OAEPHash is the OAEP digest passwords are encrypted with.
	OAEPHash = "SHA-256"
)

// Error codes attached to low-level causes.
const (
	ErrCodeBase64Decode   = "CRED_BASE64_DECODE"
	ErrCodeSPKIStructure  = "CRED_SPKI_STRUCTURE"
	ErrCodeKeyImport      = "CRED_KEY_IMPORT"
	ErrCodeOAEPCapacity   = "CRED_OAEP_CAPACITY"
	ErrCodeEncrypt        = "CRED_ENCRYPT"
	ErrCodeRandom         = "CRED_RANDOM"
	ErrCodeCanonicalJSON  = "CRED_CANONICAL_JSON"
	ErrCodeUnsupportedKey = "CRED_UNSUPPORTED_KEY"
)

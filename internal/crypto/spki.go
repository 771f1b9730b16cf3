package crypto

import (
	encasn1 "encoding/asn1"

	goerrors "github.com/agilira/go-errors"
	"golang.org/x/crypto/cryptobyte"
	cbasn1 "golang.org/x/crypto/cryptobyte/asn1"

	"github.com/mailadmin/client-go/internal/apierrors"
)

// oidRSAEncryption is the PKCS#1 rsaEncryption algorithm identifier.
var oidRSAEncryption = encasn1.ObjectIdentifier{1, 2, 840, 113549, 1, 1, 1}

// checkSPKI verifies that der is a single SubjectPublicKeyInfo whose
// algorithm is rsaEncryption. It does not validate the key itself.
func checkSPKI(der []byte) error {
	input := cryptobyte.String(der)

	var spki, algID cryptobyte.String
	if !input.ReadASN1(&spki, cbasn1.SEQUENCE) || !input.Empty() {
		return spkiStructureError("public key is not a SubjectPublicKeyInfo structure")
	}
	if !spki.ReadASN1(&algID, cbasn1.SEQUENCE) {
		return spkiStructureError("public key has no algorithm identifier")
	}

	var oid encasn1.ObjectIdentifier
	if !algID.ReadASN1ObjectIdentifier(&oid) {
		return spkiStructureError("public key algorithm identifier is malformed")
	}
	if !oid.Equal(oidRSAEncryption) {
		richErr := goerrors.New(ErrCodeUnsupportedKey, "algorithm "+oid.String()+" is not rsaEncryption")
		return apierrors.NewFormatError("public key is not an RSA key", joinCause(ErrUnsupportedAlgorithm, richErr))
	}
	return nil
}

func spkiStructureError(msg string) error {
	richErr := goerrors.New(ErrCodeSPKIStructure, msg)
	return apierrors.NewFormatError(msg, joinCause(ErrInvalidSPKI, richErr))
}

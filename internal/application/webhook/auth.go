package webhook

import (
	"encoding/base64"
	"net/http"

	"github.com/jhoicas/crm-api/internal/domain"
	"github.com/jhoicas/crm-api/internal/domain/entity"
)

// DefaultAPIKeyHeader header usado para api_key cuando la config no define uno.
const DefaultAPIKeyHeader = "X-Api-Key"

// AuthScheme es la variante de autenticación de una integración, decodificada
// una sola vez desde la config almacenada. Cada variante sabe aplicarse a los
// headers de la petición saliente.
type AuthScheme interface {
	Apply(h http.Header)
}

type authNone struct{}

func (authNone) Apply(http.Header) {}

type authBearer struct {
	token string
}

func (a authBearer) Apply(h http.Header) {
	h.Set("Authorization", "Bearer "+a.token)
}

type authAPIKey struct {
	header string
	key    string
}

func (a authAPIKey) Apply(h http.Header) {
	h.Set(a.header, a.key)
}

type authBasic struct {
	credentials string // user:pass ya descifrado
}

func (a authBasic) Apply(h http.Header) {
	h.Set("Authorization", "Basic "+base64.StdEncoding.EncodeToString([]byte(a.credentials)))
}

// DecodeAuthScheme resuelve la variante de autenticación de la config,
// descifrando el payload justo antes de usarlo. Un payload que no se puede
// descifrar se trata como credencial vacía (la entrega fallará contra el
// endpoint, no contra nosotros).
func DecodeAuthScheme(cfg entity.IntegrationConfig, dec Decrypter) (AuthScheme, error) {
	switch cfg.AuthType {
	case "", entity.AuthTypeNone:
		return authNone{}, nil
	case entity.AuthTypeBearer:
		return authBearer{token: dec.SafeDecrypt(cfg.AuthPayload)}, nil
	case entity.AuthTypeAPIKey:
		header := cfg.HeaderName
		if header == "" {
			header = DefaultAPIKeyHeader
		}
		return authAPIKey{header: header, key: dec.SafeDecrypt(cfg.AuthPayload)}, nil
	case entity.AuthTypeBasic:
		return authBasic{credentials: dec.SafeDecrypt(cfg.AuthPayload)}, nil
	default:
		return nil, domain.ErrInvalidInput
	}
}

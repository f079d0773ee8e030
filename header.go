package kwire

import (
	"github.com/pior/kwire/api"
	"github.com/pior/kwire/wire"
)

// RequestHeader precedes every request body.
//
// The client id keeps the standard nullable string encoding even in flexible
// requests; only the trailing tagged buffer depends on the mode.
type RequestHeader struct {
	APIKey        api.Key
	APIVersion    int16
	CorrelationID int32
	ClientID      *string
	Tags          wire.TaggedFields
}

func (h *RequestHeader) Fields() []wire.Field {
	return []wire.Field{
		wire.F("request_api_key", wire.Int16((*int16)(&h.APIKey))),
		wire.F("request_api_version", wire.Int16(&h.APIVersion)),
		wire.F("correlation_id", wire.Int32(&h.CorrelationID)),
		wire.F("client_id", wire.NullableString(&h.ClientID)).Standard(),
		wire.Tagged(&h.Tags),
	}
}

// ResponseHeader precedes every response body.
type ResponseHeader struct {
	CorrelationID int32
	Tags          wire.TaggedFields
}

func (h *ResponseHeader) Fields() []wire.Field {
	return []wire.Field{
		wire.F("correlation_id", wire.Int32(&h.CorrelationID)),
		wire.Tagged(&h.Tags),
	}
}

// responseHeaderFlexible reports whether the response to a request carries the
// flexible header. ApiVersions always answers with the v0 header so that a
// client can read it before knowing what the broker supports.
func responseHeaderFlexible(key api.Key, flexible bool) bool {
	return flexible && key != api.APIVersions
}

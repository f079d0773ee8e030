package api

import "github.com/pior/kwire/wire"

// APIVersionsRequest asks the broker which versions it supports for every api.
// It is always the first request on a connection.
type APIVersionsRequest struct {
	ClientSoftwareName    wire.Versioned[string] // v3+
	ClientSoftwareVersion wire.Versioned[string] // v3+
	Tags                  wire.TaggedFields
}

func (r *APIVersionsRequest) Key() Key                    { return APIVersions }
func (r *APIVersionsRequest) Versions() wire.VersionRange { return versions(0, 3) }
func (r *APIVersionsRequest) FlexibleVersion() int16      { return 3 }
func (r *APIVersionsRequest) NewResponse() Response       { return &APIVersionsResponse{} }

func (r *APIVersionsRequest) Fields() []wire.Field {
	return []wire.Field{
		wire.F("client_software_name", wire.Opt(&r.ClientSoftwareName, wire.String)).Since(3),
		wire.F("client_software_version", wire.Opt(&r.ClientSoftwareVersion, wire.String)).Since(3),
		wire.Tagged(&r.Tags),
	}
}

type APIVersionsResponse struct {
	ErrorCode      ErrorCode
	APIKeys        []APIVersionsKey
	ThrottleTimeMs wire.Versioned[int32] // v1+
	Tags           wire.TaggedFields
}

func (r *APIVersionsResponse) Fields() []wire.Field {
	return []wire.Field{
		wire.F("error_code", errorCode(&r.ErrorCode)),
		wire.F("api_keys", wire.Array(&r.APIKeys, func(k *APIVersionsKey) wire.Value { return wire.Struct(k) })),
		wire.F("throttle_time_ms", wire.Opt(&r.ThrottleTimeMs, wire.Int32)).Since(1),
		wire.Tagged(&r.Tags),
	}
}

// APIVersionsKey is one advertised entry. APIKey stays a raw int16: a newer
// broker advertises apis this client has never heard of.
type APIVersionsKey struct {
	APIKey     int16
	MinVersion int16
	MaxVersion int16
	Tags       wire.TaggedFields
}

func (k *APIVersionsKey) Fields() []wire.Field {
	return []wire.Field{
		wire.F("api_key", wire.Int16(&k.APIKey)),
		wire.F("min_version", wire.Int16(&k.MinVersion)),
		wire.F("max_version", wire.Int16(&k.MaxVersion)),
		wire.Tagged(&k.Tags),
	}
}

package apierror

// Problem type URNs. Each is the "type" member of a Problem Details body.
const (
	TypeValidation     = "urn:pulse:error:validation"      // 400
	TypeBadRequest     = "urn:pulse:error:bad_request"     // 400
	TypeInvalidUUID    = "urn:pulse:error:invalid_uuid"    // 400
	TypeUnauthorized   = "urn:pulse:error:unauthorized"    // 401
	TypeEditWindow     = "urn:pulse:error:edit_window"     // 403
	TypeNotFound       = "urn:pulse:error:not_found"       // 404
	TypeConflict       = "urn:pulse:error:conflict"        // 409
	TypeUnprocessable  = "urn:pulse:error:unprocessable"   // 422
	TypeRateLimit      = "urn:pulse:error:rate_limit"      // 429
	TypeInternal       = "urn:pulse:error:internal"        // 500
	TypeNotImplemented = "urn:pulse:error:not_implemented" // 501
)

const (
	TitleValidation     = "Validation Error"
	TitleBadRequest     = "Bad Request"
	TitleInvalidUUID    = "Invalid Identifier"
	TitleUnauthorized   = "Authentication Required"
	TitleEditWindow     = "Edit Window Closed"
	TitleNotFound       = "Resource Not Found"
	TitleConflict       = "Resource Conflict"
	TitleUnprocessable  = "Unprocessable Request"
	TitleRateLimit      = "Rate Limit Exceeded"
	TitleInternal       = "Internal Server Error"
	TitleNotImplemented = "Not Implemented"
)

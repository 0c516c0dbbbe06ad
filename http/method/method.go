package method

type Method uint8

const (
	Unknown Method = iota
	GET
	POST
	PUT
	PATCH
	OPTIONS
	DELETE

	// Count is the last one enum, so contains the greatest integer value of all the
	// methods. So real number of methods is lower by 1
	Count = iota - 1
)

// List contains all the supported HTTP methods. They are sorted by their integer value, however
// Unknown method is not included. So in order to index the List, you must subtract 1 first.
var List = []Method{GET, POST, PUT, PATCH, OPTIONS, DELETE}

func (m Method) String() string {
	switch m {
	case GET:
		return "GET"
	case POST:
		return "POST"
	case PUT:
		return "PUT"
	case PATCH:
		return "PATCH"
	case OPTIONS:
		return "OPTIONS"
	case DELETE:
		return "DELETE"
	default:
		return "Unknown"
	}
}

// Parse matches the token exactly (case-sensitive). Any token outside the supported set
// results in Unknown, never in a fallback method.
func Parse(str string) Method {
	switch len(str) {
	case 3:
		if str == "GET" {
			return GET
		} else if str == "PUT" {
			return PUT
		}
	case 4:
		if str == "POST" {
			return POST
		}
	case 5:
		if str == "PATCH" {
			return PATCH
		}
	case 6:
		if str == "DELETE" {
			return DELETE
		}
	case 7:
		if str == "OPTIONS" {
			return OPTIONS
		}
	}

	return Unknown
}

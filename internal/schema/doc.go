// Package schema derives JSON-Schema documents from linked mappings.
//
// Every mapping becomes one object schema registered as a named component.
// Relations and mapping-typed schema entries point at their related
// mapping's component through a $ref, so cyclic mappings produce finite
// documents:
//
//	{"components": {"schemas": {"partner": {
//	    "type": "object",
//	    "required": ["name"],
//	    "properties": {
//	        "name":     {"type": "string"},
//	        "parent":   {"$ref": "#/components/schemas/partner"},
//	        "children": {"type": "array", "items": {"$ref": "#/components/schemas/partner"}}
//	    }
//	}}}}
package schema

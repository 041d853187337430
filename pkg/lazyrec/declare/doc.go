/*
Package declare builds lazyrec specifications from YAML or JSON files,
for records over map[string]any sources.

A file declares fields by kind:

	fields:
	  name:
	    template: "${first} ${last}"
	  phone:
	    first_of: [mobile, home]
	  adult:
	    expr: "age >= 18"
	  plan:
	    const: free

Built-in kinds:

  - template: placeholder expansion; ${name} resolves against source
    keys first, then sibling record fields through the normal lazy
    path, so one declared field can build on another.
  - first_of: the first truthy candidate value wins; nil when none is.
  - expr: boolean expression over the same scope (==, !=, <, >, <=,
    >=, and, or, not, contains).
  - const: a literal value.

Custom kinds register with RegisterKind and are selected explicitly,
with def.Args carrying their parameters:

	declare.RegisterKind("upper", buildUpper)

	fields:
	  shout:
	    kind: upper
	    args:
	      of: name

Build returns the still-open *lazyrec.Spec, so callers can add
programmatic fields before compiling:

	spec, err := declare.FromFile("person.yaml")
	factory := spec.Compile(lazyrec.WithLogger(logger))
	rec := factory.New(map[string]any{"first": "Lando", "last": "Calrissian"})
*/
package declare

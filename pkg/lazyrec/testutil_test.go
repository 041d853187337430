package lazyrec

import "fmt"

// Test source types and fixture specs used across tests.

// Person is the canonical source value.
type Person struct {
	First  string
	Last   string
	Mobile string
	Home   string
}

// lando is the Person most tests construct records from.
var lando = Person{
	First:  "Lando",
	Last:   "Calrissian",
	Mobile: "555-123-1234",
	Home:   "555-555-5555",
}

// counting wraps a compute function and counts its invocations.
func counting[S any](calls *int, fn ComputeFunc[S]) ComputeFunc[S] {
	return func(rec View, source S) (any, error) {
		*calls++
		return fn(rec, source)
	}
}

// fullName computes "First Last".
func fullName(_ View, p Person) (any, error) {
	return p.First + " " + p.Last, nil
}

// bestPhone prefers mobile over home.
func bestPhone(_ View, p Person) (any, error) {
	if p.Mobile != "" {
		return p.Mobile, nil
	}
	return p.Home, nil
}

// contactInfo derives from the sibling name and phone fields through
// the record handle.
func contactInfo(rec View, _ Person) (any, error) {
	return fmt.Sprintf("%v / %v", rec.MustGet("name"), rec.MustGet("phone")), nil
}

// callCounts tracks per-field compute invocations.
type callCounts struct {
	name    int
	phone   int
	contact int
}

// contactFactory builds the canonical factory with invocation counting.
func contactFactory(calls *callCounts, opts ...Option) *Factory[Person] {
	return NewSpec[Person]().
		Field("name", counting[Person](&calls.name, fullName)).
		Field("phone", counting[Person](&calls.phone, bestPhone)).
		Field("contactInfo", counting[Person](&calls.contact, contactInfo)).
		Compile(opts...)
}

// constant returns a compute function yielding a fixed value.
func constant[S any](v any) ComputeFunc[S] {
	return func(View, S) (any, error) {
		return v, nil
	}
}

// failing returns a compute function that always fails with err.
func failing[S any](err error) ComputeFunc[S] {
	return func(View, S) (any, error) {
		return nil, err
	}
}

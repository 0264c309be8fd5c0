// Package value models the live, possibly hostile object graphs that get
// captured inside an isolated execution context before they cross a boundary.
//
// # Data model
//
//   - Object – ordered own properties (visible and hidden), accessor
//     properties whose getters may fail, and a prototype link.
//   - Array – a length plus a sparse set of present indices; holes stay holes.
//   - Function, Symbol, Undefined – stand-ins for runtime values that have no
//     natural Go counterpart.
//
// Property lookup is expressed through the Chain interface: each level
// exposes its own keys and the next ancestor level. ObjectPrototype is the
// universal root that every walk stops at; ErrorPrototype is the built-in
// error root that error objects inherit from.
//
// Package value does no serialization. The transform into a transportable
// tree lives in internal/serialize.
package value

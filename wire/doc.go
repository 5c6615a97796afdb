// Package wire is the codec half of the LURK framework: primitives,
// the thirteen-kind message catalog, and the blocking and partial-buffer
// frame decoders described by the protocol specification. It has no
// knowledge of sessions, registries, or the server engine — those live in
// the sibling server package.
package wire

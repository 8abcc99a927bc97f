// Package npm talks to the npm ecosystem in two ways.
//
// [Client] fetches package manifests from an npm-compatible registry
// (https://registry.npmjs.org by default) and returns them as
// [resolve.Manifest] values, keeping each version's dependencies in declared
// order. Manifests are cached for the configured TTL; with refresh enabled
// the cache is bypassed on reads.
//
// [LsRunner] runs "npm ls <pkg> --json --depth=N" in a project directory and
// flattens the printed tree into a reference ordering via [ParseLs]. It is
// used to compare deptree's load order with npm's view of the installed tree.
//
// [resolve.Manifest]: github.com/matzehuels/deptree/pkg/resolve.Manifest
package npm

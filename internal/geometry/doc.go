// Package geometry stores triangle meshes and answers ray queries against them.
//
// A [TriangleMesh] is filled with [TriangleMesh.AddTriangle] (or built from
// position and index arrays with [NewIndexedMesh]) and then frozen by
// [TriangleMesh.BuildAccelerationStructure], which builds a [BVH] over the
// triangle centroids. After that the mesh is immutable and can be queried with
// [TriangleMesh.Raycast] in one of three modes:
//
//   - [ClosestHit]: the nearest intersection only
//   - [AnyHit]: stop at the first intersection found
//   - [AllHits]: every unique intersection, used for point-in-mesh parity tests
package geometry

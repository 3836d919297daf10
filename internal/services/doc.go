// Package services defines the capability interfaces the pipeline consumes and implements them for the concrete stores.
//
// # Capability Interfaces
//
// The pipeline treats every external system as a narrow capability and
// makes no assumption about its internal implementation:
//   - [SourceStore] : list a relational collection in creation order
//   - [IdentityProvider] : enumerate the auth provider's user registry
//   - [BlobStore] : enumerate a storage bucket with public URLs
//   - [DocumentStore] : create/upsert/list documents in the destination CMS
//
// # Implementations
//
// [PostgresStore] reads source tables through a pgx connection pool,
// normalizing driver values (timestamps, UUID bytes) into JSON-friendly
// shapes so exported snapshots are lossless and stable.
//
// [FirebaseIdentity] pages through the Firebase Auth user registry and
// flattens each entry into the same collection shape as relational rows.
//
// [CloudBlobStore] lists Google Cloud Storage buckets and computes each
// object's public access URL.
//
// [FirestoreStore] writes destination documents keyed by the preserved
// source identifier and reads them back for validation.
//
// # Error Handling
//
// Constructors return wrapped sentinels from the shared package
// ([shared.ErrSourceUnavailable], [shared.ErrDestinationUnavailable], ...)
// so callers can classify a failure as fatal initialization. Per-call
// failures are returned plainly for the stage engines to collect.
package services

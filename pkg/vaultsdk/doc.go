// Package vaultsdk is a Go client for the vault service and the home of its
// wire types.
//
// Basic usage:
//
//	c := vaultsdk.New("https://vault.example.com")
//	sess, err := c.Login(ctx, vaultsdk.LoginRequest{
//		Email:               "alice@example.com",
//		MasterPasswordProof: proof,
//	})
//	if err != nil {
//		return err
//	}
//
//	manifest, err := sess.RotationManifest(ctx)
//	// re-encrypt every record listed in manifest.Domains under the new key...
//	res, err := sess.RotateAccountKey(ctx, req)
//
// A rotation that misses records fails with an *APIError whose Problems name
// the missing ids, so the client can refetch and retry. After a rotation
// every other session of the account is logged out.
package vaultsdk

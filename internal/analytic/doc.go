// Package analytic provides the closed-form reference trajectory of an ideal
// rigid body against which simulated state is compared.
//
// Translation is the constant-gravity free-fall integral. Angular momentum
// and total mechanical energy are conserved quantities and are returned as
// their initial values for all t. Orientation has a closed form only in the
// [Simple] regime (zero gravity, spin about a single principal axis); in the
// [Complex] regime gyroscopic tumbling has no closed-form Euler-angle
// trajectory and no orientation prediction is made.
package analytic

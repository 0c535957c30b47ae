// Package cube checks facelet strings before they are handed to a solver.
//
// A state is 54 facelets read face by face, each one of the face letters
// U, R, F, D, L and B, with every letter appearing exactly nine times.
// Validation failures are ozzo-validation errors whose Code is one of
// invalid_length, invalid_colors or invalid_distribution.
package cube

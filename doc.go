// Package brandcaptcha is a client for the BrandCaptcha service.
//
// ChallengeHTML and RenderChallenge produce the markup that embeds the
// challenge widget in a form. CheckAnswer posts the user's solution to the
// verification endpoint over a plain HTTP/1.0 connection and maps the two
// line answer to a Result:
//
//	client := brandcaptcha.New(brandcaptcha.WithLogger(slog.Default()))
//	res, err := client.CheckAnswer(ctx, brandcaptcha.VerificationRequest{
//		PrivateKey: privateKey,
//		RemoteIP:   remoteIP,
//		Challenge:  r.FormValue("brand_cap_challenge"),
//		Response:   r.FormValue("brand_cap_answer"),
//	})
//
// Errors are *errors.Error values from the errors sub-package; use
// errors.IsConfiguration, errors.IsTransport and errors.IsProtocol to tell
// them apart.
package brandcaptcha

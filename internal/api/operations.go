package api

import (
	"context"
	"net/url"
)

// Register creates an account.  The photo is mandatory.
func (c *Client) Register(ctx context.Context, in Registration) (Reply[struct{}], error) {
	if in.Photo == nil || len(in.Photo.Data) == 0 {
		return Reply[struct{}]{}, ErrMissingFile
	}
	form := url.Values{
		"nama_nasabah": {in.Name},
		"gender":       {in.Gender},
		"alamat":       {in.Address},
		"telepon":      {in.Phone},
		"username":     {in.Username},
		"password":     {in.Password},
	}
	return call[struct{}](ctx, c, OpRegister, "", "", payload{
		form:  form,
		files: map[string]*Upload{"foto": in.Photo},
	})
}

// Login checks credentials.  Data.Token is empty when the API issues none.
func (c *Client) Login(ctx context.Context, in Credentials) (Reply[Session], error) {
	form := url.Values{"username": {in.Username}, "password": {in.Password}}
	return call[Session](ctx, c, OpLogin, "", "", payload{form: form})
}

// Profile fetches the logged-in nasabah's record.
func (c *Client) Profile(ctx context.Context, token string) (Reply[Profile], error) {
	return call[Profile](ctx, c, OpProfile, token, "", payload{})
}

// UpdateProfile sends the edited record.  The id travels in the path and the
// body.
func (c *Client) UpdateProfile(ctx context.Context, token string, p Profile) (Reply[Profile], error) {
	form := url.Values{
		"id":             {string(p.ID)},
		"nama_pelanggan": {p.Name},
		"alamat":         {p.Address},
		"gender":         {p.Gender},
		"telepon":        {p.Phone},
	}
	return call[Profile](ctx, c, OpUpdateProfile, token, string(p.ID), payload{form: form})
}

// Courses lists the matkul catalogue.
func (c *Client) Courses(ctx context.Context, token string) (Reply[[]Course], error) {
	return call[[]Course](ctx, c, OpCourses, token, "", payload{})
}

// SelectCourses submits the chosen records, not just their ids.
func (c *Client) SelectCourses(ctx context.Context, token string, picked []Course) (Reply[Selection], error) {
	return call[Selection](ctx, c, OpSelectCourses, token, "", payload{json: Selection{Courses: picked}})
}

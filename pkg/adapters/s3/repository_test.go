package s3_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AmineFethii/AMINE-FETHI-CRM-sub000/pkg/adapters/s3"
	"github.com/AmineFethii/AMINE-FETHI-CRM-sub000/pkg/core"
)

// fakeS3 keeps objects in a map keyed by bucket/key.
type fakeS3 struct {
	objects     map[string][]byte
	contentType map[string]string
	getErr      error
	missing     bool
}

func newFakeS3() *fakeS3 {
	return &fakeS3{objects: map[string][]byte{}, contentType: map[string]string{}}
}

func (f *fakeS3) GetObject(ctx context.Context, in *awss3.GetObjectInput, _ ...func(*awss3.Options)) (*awss3.GetObjectOutput, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	data, ok := f.objects[aws.ToString(in.Bucket)+"/"+aws.ToString(in.Key)]
	if !ok {
		return nil, &s3types.NoSuchKey{}
	}
	return &awss3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(data))}, nil
}

func (f *fakeS3) PutObject(ctx context.Context, in *awss3.PutObjectInput, _ ...func(*awss3.Options)) (*awss3.PutObjectOutput, error) {
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	k := aws.ToString(in.Bucket) + "/" + aws.ToString(in.Key)
	f.objects[k] = data
	f.contentType[k] = aws.ToString(in.ContentType)
	return &awss3.PutObjectOutput{}, nil
}

func (f *fakeS3) HeadBucket(ctx context.Context, in *awss3.HeadBucketInput, _ ...func(*awss3.Options)) (*awss3.HeadBucketOutput, error) {
	if f.missing {
		return nil, &s3types.NotFound{}
	}
	return &awss3.HeadBucketOutput{}, nil
}

func TestRepository_MissingObjectIsEmpty(t *testing.T) {
	repo := s3.NewRepository(newFakeS3(), s3.Config{Bucket: "crm"})
	require.NoError(t, repo.Initialize(context.Background()))

	snap, err := repo.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, snap.Clients)
}

func TestRepository_PersistAndLoad(t *testing.T) {
	ctx := context.Background()
	api := newFakeS3()
	repo := s3.NewRepository(api, s3.Config{Bucket: "crm", Key: "records/portal.json"})

	store := core.NewStore(repo)
	require.NoError(t, store.Load(ctx))
	svc := core.NewService(store)
	c, err := svc.Onboard(ctx, core.ClientEngagement{Email: "jane@acme.test", CompanyName: "Acme", ContractValue: 900})
	require.NoError(t, err)
	_, err = svc.RecordPayment(ctx, c.ID, 900)
	require.NoError(t, err)

	assert.Equal(t, "application/json", api.contentType["crm/records/portal.json"])

	snap, err := repo.Load(ctx)
	require.NoError(t, err)
	require.Len(t, snap.Clients, 1)
	assert.Equal(t, core.PaymentPaid, snap.Clients[0].PaymentStatus)
	assert.Equal(t, "Payment Received", snap.Clients[0].Notifications.At(0).Title)
}

func TestRepository_Errors(t *testing.T) {
	ctx := context.Background()

	api := newFakeS3()
	api.missing = true
	assert.Error(t, s3.NewRepository(api, s3.Config{Bucket: "gone"}).Initialize(ctx))

	api = newFakeS3()
	api.getErr = errors.New("access denied")
	_, err := s3.NewRepository(api, s3.Config{Bucket: "crm"}).Load(ctx)
	assert.ErrorIs(t, err, api.getErr)

	ro := s3.NewRepository(newFakeS3(), s3.Config{Bucket: "crm", ReadOnly: true})
	assert.ErrorIs(t, ro.Persist(ctx, core.Snapshot{}), core.ErrReadOnly)

	_, err = s3.New(ctx, s3.Config{})
	assert.Error(t, err)
}
